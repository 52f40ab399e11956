// Package store реализует in-memory реестры симулятора.
//
// Store держит четыре реестра: work pools, deployments, flow runs и
// task runs. Записи никогда не удаляются; state переживает только
// время жизни процесса (персистентности нет по дизайну).
//
// Потокобезопасность: все реестры защищены одним RWMutex, каждая
// мутация — одно атомарное обновление записи, частично записанное
// состояние снаружи не наблюдаемо. Методы чтения возвращают копии
// записей, поэтому вызывающая сторона может безопасно сериализовать
// их, пока симулятор продолжает мутировать оригинал.
//
// Транзакций между сущностями нет: декремент pending_work пула и
// перевод run в COMPLETED — две отдельные мутации.
package store

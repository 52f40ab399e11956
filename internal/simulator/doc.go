// Package simulator реализует Lifecycle Simulator — фоновое продвижение
// flow runs по жизненному циклу.
//
// На каждый созданный flow run запускается одна горутина, которая
// имитирует ход времени и выполнение работы без реальных вычислений:
//
//	sleep → PENDING → sleep → RUNNING → task runs → sleep → COMPLETED
//
// Задачи материализуются в порядке списка из flow definition (симулятор
// не строит граф зависимостей), каждая сразу в состоянии COMPLETED.
// По завершении декрементируется pending_work владеющего пула.
//
// Перед каждым переходом симулятор атомарно проверяет, не выставил ли
// внешний override терминальное состояние, и в этом случае молча
// прекращает продвижение run — override всегда побеждает.
//
// Симулятор никогда не возвращает ошибку пользователю: любой сбой
// фоновой симуляции логируется и продвижение этого run прекращается.
// Горутины супервизируются через WaitGroup: Stop() отменяет все
// незавершённые симуляции и дожидается их выхода.
package simulator

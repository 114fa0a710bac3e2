package service

import "time"

// Clock источник текущего времени; в тестах подменяется.
type Clock interface {
	Now() time.Time
}

// RealClock возвращает системное время в UTC.
type RealClock struct{}

// Now возвращает текущее время.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock всегда возвращает одно и то же время.
type FixedClock time.Time

// Now возвращает зафиксированное время.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

package service

// CounterStore 计数存储的最小接口，由 repository.CounterRepository 实现
type CounterStore interface {
	Increment() error
	Clear() error
	Count() (int64, error)
}

type CounterService struct {
	store CounterStore
}

func NewCounterService(store CounterStore) *CounterService {
	return &CounterService{store: store}
}

func (s *CounterService) Increment() error {
	return s.store.Increment()
}

func (s *CounterService) Clear() error {
	return s.store.Clear()
}

func (s *CounterService) Count() (int64, error) {
	return s.store.Count()
}

package tracker

import (
	"sync"
	"time"
)

// 事件类型
const (
	EventOpen  = "open"
	EventClick = "click"
)

// Event 一条埋点记录，字段与 /clicks 返回的行一致
type Event struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	IP        string    `json:"ip"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// Store 进程内的事件存储，重启即清空
type Store struct {
	mu     sync.RWMutex
	nextID int
	events []Event
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{nextID: 1, now: func() time.Time { return time.Now().UTC() }}
}

// Record 追加一条事件，ID 从 1 开始自增
func (s *Store) Record(email, ip, eventType string) Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev := Event{
		ID:        s.nextID,
		Email:     email,
		IP:        ip,
		EventType: eventType,
		Timestamp: s.now(),
	}
	s.nextID++
	s.events = append(s.events, ev)
	return ev
}

// List 按写入顺序返回全部事件，没有事件时返回空切片
func (s *Store) List() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

package session

import (
	"sync"
	"time"
)

// Status — положение кандидата в процессе допуска.
type Status string

const (
	StatusAwaitingConfirm  Status = "awaiting_confirm"
	StatusAwaitingPhoto    Status = "awaiting_photo"
	StatusPhotoSent        Status = "photo_sent"
	StatusAwaitingNewPhoto Status = "awaiting_new_photo"
	StatusApproved         Status = "approved"
	StatusDenied           Status = "denied"
)

// Step — указатель текущего шага анкеты. Входящее текстовое сообщение
// диспетчеризуется по нему, а не по зарегистрированному продолжению.
type Step string

const (
	StepNone      Step = ""
	StepName      Step = "name"
	StepSurname   Step = "surname"
	StepApartment Step = "apartment"
	StepPhone     Step = "phone"
	StepCarCount  Step = "car_count"
	StepCarPlate  Step = "car_plate"
)

// Session — эфемерное состояние кандидата. Живёт только в памяти:
// при рестарте процесса теряется, долговечна лишь база.
type Session struct {
	UserID    int64
	Status    Status
	Step      Step
	JoinedAt  time.Time
	HouseChat int64 // chat_id дома, 0 — дом ещё не определён
	HouseID   int64 // внутренний id дома, заполняется на первом шаге анкеты
	Resident  int64 // id записи жильца, нужен для добавления машин
	CarCount  int
	CarsAdded int
	Reason    string
}

// Store — сессии по tg id пользователя плюс одноместный слот админа
// «жду причину запроса нового фото». Слот перезаписывается последним
// запросом — админ один, гонки приемлемы.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session

	pendingReasonFor int64
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

func (s *Store) Get(userID int64) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[userID]
}

// Ensure возвращает сессию, создавая новую при отсутствии либо если
// прежняя завершилась одобрением: повторный вход начинает цикл заново.
// Уход из чата сессию просто удаляет (см. Delete).
func (s *Store) Ensure(userID int64, houseChat int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[userID]
	if !ok || sess.Status == StatusApproved {
		sess = &Session{
			UserID:   userID,
			Status:   StatusAwaitingPhoto,
			JoinedAt: time.Now(),
		}
		s.sessions[userID] = sess
	}
	if houseChat != 0 {
		sess.HouseChat = houseChat
	}
	return sess
}

func (s *Store) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
}

// SetPendingReason запоминает, про какого пользователя админ сейчас
// пишет причину. 0 снимает ожидание.
func (s *Store) SetPendingReason(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingReasonFor = userID
}

func (s *Store) PendingReason() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingReasonFor
}

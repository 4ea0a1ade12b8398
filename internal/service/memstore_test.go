package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/taskreview/internal/domain"
)

// memDB is an in-memory stand-in for the Postgres repositories. It honors the
// same conditional-update contract and supports failure injection per step.
type memDB struct {
	mu        sync.Mutex
	nextLogID int64

	tasks     map[int64]*domain.Task
	users     map[string]*domain.User
	orders    map[int64]*domain.Order
	settings  map[string]*domain.AutomationSetting
	penalties []domain.AdminPenaltyLogEntry

	settingLookups int

	failAdjust   map[string]error
	failCredit   error
	failReverse  error
	failAppend   error
	failUnsettle error
	failRelease  error
	failDelete   error
}

func newMemDB() *memDB {
	return &memDB{
		tasks:      make(map[int64]*domain.Task),
		users:      make(map[string]*domain.User),
		orders:     make(map[int64]*domain.Order),
		settings:   make(map[string]*domain.AutomationSetting),
		failAdjust: make(map[string]error),
	}
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	c.ReviewReturns = append(domain.ReviewLedger(nil), t.ReviewReturns...)
	return &c
}

func (db *memDB) task(id int64) *domain.Task {
	db.mu.Lock()
	defer db.mu.Unlock()
	if t, ok := db.tasks[id]; ok {
		return cloneTask(t)
	}
	return nil
}

func (db *memDB) user(id string) *domain.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	if u, ok := db.users[id]; ok {
		c := *u
		c.CompletedTasks = append([]domain.CompletedTask(nil), u.CompletedTasks...)
		return &c
	}
	return nil
}

type memTasks struct{ db *memDB }

func (m memTasks) GetByID(_ context.Context, taskID int64) (*domain.Task, error) {
	if t := m.db.task(taskID); t != nil {
		return t, nil
	}
	return nil, domain.ErrTaskNotFound
}

func (m memTasks) SubmitForReview(_ context.Context, taskID int64, assignment *domain.DispatcherAssignment) (*domain.Task, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	t, ok := m.db.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if !t.Status.IsActive() {
		return nil, domain.ErrConcurrentUpdate
	}

	t.Status = domain.TaskStatusUnderReview
	t.IsLocked = true
	if t.OriginalDeadline == nil && t.DueDate != nil {
		deadline := *t.DueDate
		t.OriginalDeadline = &deadline
	}
	if t.DispatcherID == nil && assignment != nil {
		id := assignment.DispatcherID
		pct := assignment.DispatcherPercentage
		t.DispatcherID = &id
		t.DispatcherPercentage = &pct
	}
	return cloneTask(t), nil
}

func (m memTasks) ReturnForRework(_ context.Context, taskID int64, comment string, returnedAt time.Time) (*domain.ReviewReturn, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	t, ok := m.db.tasks[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	if t.Status != domain.TaskStatusUnderReview {
		return nil, domain.ErrConcurrentUpdate
	}

	entry, err := t.ReviewReturns.Next(taskID, comment, returnedAt)
	if err != nil {
		return nil, err
	}
	ledger, err := t.ReviewReturns.Append(entry)
	if err != nil {
		return nil, err
	}

	t.ReviewReturns = ledger
	t.Status = domain.TaskStatusInProgress
	t.IsLocked = false
	return &entry, nil
}

func (m memTasks) Settle(_ context.Context, taskID int64, s domain.Settlement) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	t, ok := m.db.tasks[taskID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if t.Status != domain.TaskStatusUnderReview || t.DispatcherRewardApplied {
		return domain.ErrConcurrentUpdate
	}

	completedAt := s.CompletedAt
	execution := s.ExecutionTimeSeconds
	t.Status = domain.TaskStatusCompleted
	t.CompletedAt = &completedAt
	t.ExecutionTimeSeconds = &execution
	if s.RewardApplied() {
		amount := *s.RewardAmount
		t.DispatcherRewardAmount = &amount
		t.DispatcherRewardApplied = true
		t.DispatcherRewardAppliedAt = &completedAt
	}
	return nil
}

func (m memTasks) Unsettle(_ context.Context, taskID int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if m.db.failUnsettle != nil {
		return m.db.failUnsettle
	}
	t, ok := m.db.tasks[taskID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if t.Status != domain.TaskStatusCompleted || t.PenaltyApplied {
		return domain.ErrConcurrentUpdate
	}

	t.Status = domain.TaskStatusUnderReview
	t.CompletedAt = nil
	t.ExecutionTimeSeconds = nil
	t.DispatcherRewardAmount = nil
	t.DispatcherRewardApplied = false
	t.DispatcherRewardAppliedAt = nil
	return nil
}

func (m memTasks) ClaimPenalty(_ context.Context, taskID int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	t, ok := m.db.tasks[taskID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if !t.DispatcherRewardApplied || t.PenaltyApplied {
		return domain.ErrConcurrentUpdate
	}
	t.PenaltyApplied = true
	return nil
}

func (m memTasks) ReleasePenalty(_ context.Context, taskID int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if m.db.failRelease != nil {
		return m.db.failRelease
	}
	t, ok := m.db.tasks[taskID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	t.PenaltyApplied = false
	return nil
}

func (m memTasks) Delete(_ context.Context, taskID int64) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if m.db.failDelete != nil {
		return m.db.failDelete
	}
	if _, ok := m.db.tasks[taskID]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(m.db.tasks, taskID)

	// completed_tasks rows cascade with the task
	for _, u := range m.db.users {
		kept := u.CompletedTasks[:0]
		for _, ct := range u.CompletedTasks {
			if ct.TaskID != taskID {
				kept = append(kept, ct)
			}
		}
		u.CompletedTasks = kept
	}
	return nil
}

func (m memTasks) ListUncreditedSettlements(_ context.Context) ([]*domain.Task, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	var out []*domain.Task
	for _, t := range m.db.tasks {
		if t.Status != domain.TaskStatusCompleted || !t.DispatcherRewardApplied || t.ResponsibleUserID == nil {
			continue
		}
		if u, ok := m.db.users[*t.ResponsibleUserID]; ok && u.HasCompleted(t.ID) {
			continue
		}
		out = append(out, cloneTask(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memUsers struct{ db *memDB }

func (m memUsers) GetByID(_ context.Context, userID string) (*domain.User, error) {
	if u := m.db.user(userID); u != nil {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m memUsers) AdjustSalary(_ context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if err := m.db.failAdjust[userID]; err != nil {
		return decimal.Zero, err
	}
	u, ok := m.db.users[userID]
	if !ok {
		return decimal.Zero, domain.ErrUserNotFound
	}
	u.Salary = u.Salary.Add(delta)
	return u.Salary, nil
}

func (m memUsers) CreditWorkerForTask(_ context.Context, workerID string, taskID int64, payment decimal.Decimal, hasPenalty bool) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if m.db.failCredit != nil {
		return false, m.db.failCredit
	}
	u, ok := m.db.users[workerID]
	if !ok {
		return false, domain.ErrUserNotFound
	}
	if u.HasCompleted(taskID) {
		return false, nil
	}
	u.CompletedTasks = append(u.CompletedTasks, domain.CompletedTask{
		TaskID:      taskID,
		Payment:     payment,
		HasPenalty:  hasPenalty,
		CompletedAt: time.Now(),
	})
	u.Salary = u.Salary.Add(payment)
	return true, nil
}

func (m memUsers) ReverseWorkerCredit(_ context.Context, workerID string, taskID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if m.db.failReverse != nil {
		return decimal.Zero, m.db.failReverse
	}
	u, ok := m.db.users[workerID]
	if !ok {
		return decimal.Zero, domain.ErrUserNotFound
	}
	u.Salary = decimal.Max(decimal.Zero, u.Salary.Sub(amount))

	kept := u.CompletedTasks[:0]
	for _, ct := range u.CompletedTasks {
		if ct.TaskID != taskID {
			kept = append(kept, ct)
		}
	}
	u.CompletedTasks = kept
	return u.Salary, nil
}

type memOrders struct{ db *memDB }

func (m memOrders) GetStage(_ context.Context, orderID int64) (string, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	o, ok := m.db.orders[orderID]
	if !ok {
		return "", domain.ErrOrderNotFound
	}
	return o.Stage, nil
}

func (m memOrders) ListTaskIDs(_ context.Context, orderID int64) ([]int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if _, ok := m.db.orders[orderID]; !ok {
		return nil, domain.ErrOrderNotFound
	}
	ids := []int64{}
	for _, t := range m.db.tasks {
		if t.OrderID != nil && *t.OrderID == orderID {
			ids = append(ids, t.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type memSettings struct{ db *memDB }

func (m memSettings) GetByStage(_ context.Context, stageID string) (*domain.AutomationSetting, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	m.db.settingLookups++
	s, ok := m.db.settings[stageID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrAutomationSettingNotFound, stageID)
	}
	c := *s
	return &c, nil
}

type memPenalties struct{ db *memDB }

func (m memPenalties) Append(_ context.Context, entry *domain.AdminPenaltyLogEntry) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()

	if m.db.failAppend != nil {
		return m.db.failAppend
	}
	m.db.nextLogID++
	entry.ID = m.db.nextLogID
	entry.CreatedAt = time.Now()
	m.db.penalties = append(m.db.penalties, *entry)
	return nil
}

// newMemService wires a TaskService to db with a fixed clock.
func newMemService(db *memDB, now time.Time) *TaskService {
	svc := NewTaskService(memTasks{db}, memUsers{db}, memOrders{db}, memSettings{db}, memPenalties{db})
	svc.now = func() time.Time { return now }
	return svc
}

package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/taskreview/internal/domain"
	"github.com/mtlprog/taskreview/internal/repository"
	"github.com/mtlprog/taskreview/internal/service"
)

// TaskDetail represents the full task object with computed fields.
type TaskDetail struct {
	ID                        int64            `json:"id"`
	UUID                      string           `json:"uuid"`
	Title                     string           `json:"title"`
	Description               string           `json:"description"`
	Status                    string           `json:"status"`
	ResponsibleUserID         *string          `json:"responsible_user_id"`
	OrderID                   *int64           `json:"order_id"`
	DueDate                   *time.Time       `json:"due_date"`
	OriginalDeadline          *time.Time       `json:"original_deadline"`
	IsLocked                  bool             `json:"is_locked"`
	IsOverdue                 bool             `json:"is_overdue"`
	ReturnsCount              int              `json:"returns_count"`
	Salary                    *decimal.Decimal `json:"salary"`
	DispatcherID              *string          `json:"dispatcher_id"`
	DispatcherPercentage      *decimal.Decimal `json:"dispatcher_percentage"`
	DispatcherRewardAmount    *decimal.Decimal `json:"dispatcher_reward_amount"`
	DispatcherRewardApplied   bool             `json:"dispatcher_reward_applied"`
	DispatcherRewardAppliedAt *time.Time       `json:"dispatcher_reward_applied_at"`
	PenaltyApplied            bool             `json:"penalty_applied"`
	ProjectedWorkerPayment    *decimal.Decimal `json:"projected_worker_payment"`
	ProjectedDispatcherReward *decimal.Decimal `json:"projected_dispatcher_reward"`
	CompletedAt               *time.Time       `json:"completed_at"`
	ExecutionTimeSeconds      *int64           `json:"execution_time_seconds"`
	CreatedAt                 time.Time        `json:"created_at"`
	UpdatedAt                 time.Time        `json:"updated_at"`
}

// ReviewReturnInfo represents one entry of the review-return ledger.
type ReviewReturnInfo struct {
	ReturnNumber int       `json:"return_number"`
	Comment      string    `json:"comment"`
	ReturnedAt   time.Time `json:"returned_at"`
}

// PenaltyInfo represents one admin penalty log entry.
type PenaltyInfo struct {
	ID            int64           `json:"id"`
	AdminID       string          `json:"admin_id"`
	DispatcherID  string          `json:"dispatcher_id"`
	PenaltyAmount decimal.Decimal `json:"penalty_amount"`
	Reason        string          `json:"reason"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TaskDetailResponse represents full task details with its ledger and penalties.
type TaskDetailResponse struct {
	Task          TaskDetail         `json:"task"`
	ReviewReturns []ReviewReturnInfo `json:"review_returns"`
	Penalties     []PenaltyInfo      `json:"penalties"`
}

// SubmitResponse represents the response for POST /tasks/{id}/submit.
type SubmitResponse struct {
	Task               TaskDetail `json:"task"`
	DispatcherAssigned bool       `json:"dispatcher_assigned"`
	Warnings           []string   `json:"warnings"`
}

// ApprovalResponse represents the response for POST /tasks/{id}/approve.
type ApprovalResponse struct {
	TaskID           int64            `json:"task_id"`
	CompletedAt      time.Time        `json:"completed_at"`
	RewardApplied    bool             `json:"reward_applied"`
	Overdue          bool             `json:"overdue"`
	DispatcherID     *string          `json:"dispatcher_id"`
	DispatcherReward decimal.Decimal  `json:"dispatcher_reward"`
	DispatcherSalary *decimal.Decimal `json:"dispatcher_salary"`
	WorkerID         *string          `json:"worker_id"`
	WorkerPayment    decimal.Decimal  `json:"worker_payment"`
	WorkerCredited   bool             `json:"worker_credited"`
	Warnings         []string         `json:"warnings"`
}

// ReturnResponse represents the response for POST /tasks/{id}/return.
type ReturnResponse struct {
	TaskID       int64     `json:"task_id"`
	ReturnNumber int       `json:"return_number"`
	Comment      string    `json:"comment"`
	ReturnedAt   time.Time `json:"returned_at"`
}

// PenaltyResponse represents the response for POST /tasks/{id}/penalty.
type PenaltyResponse struct {
	TaskID           int64           `json:"task_id"`
	DispatcherID     string          `json:"dispatcher_id"`
	PenaltyAmount    decimal.Decimal `json:"penalty_amount"`
	DispatcherSalary decimal.Decimal `json:"dispatcher_salary"`
	Penalty          PenaltyInfo     `json:"penalty"`
}

// DeletionResponse represents the response for DELETE /tasks/{id}.
type DeletionResponse struct {
	TaskID        int64            `json:"task_id"`
	WorkerID      *string          `json:"worker_id"`
	WorkerDebited decimal.Decimal  `json:"worker_debited"`
	WorkerSalary  *decimal.Decimal `json:"worker_salary"`
	Warnings      []string         `json:"warnings"`
}

// ReviewQueueItem represents a task waiting for review.
type ReviewQueueItem struct {
	ID               int64            `json:"id"`
	Title            string           `json:"title"`
	WorkerID         *string          `json:"worker_id"`
	WorkerName       *string          `json:"worker_name"`
	OrderID          *int64           `json:"order_id"`
	OrderTitle       *string          `json:"order_title"`
	ClientName       *string          `json:"client_name"`
	DueDate          *time.Time       `json:"due_date"`
	OriginalDeadline *time.Time       `json:"original_deadline"`
	Salary           *decimal.Decimal `json:"salary"`
	IsOverdue        bool             `json:"is_overdue"`
	ReturnsCount     int              `json:"returns_count"`
}

// ReviewQueueResponse represents the response for GET /review-queue.
type ReviewQueueResponse struct {
	Tasks        []ReviewQueueItem `json:"tasks"`
	Total        int               `json:"total"`
	OverdueCount int               `json:"overdue_count"`
	Limit        int               `json:"limit"`
	Offset       int               `json:"offset"`
}

// DispatcherStats represents review statistics for a single dispatcher.
type DispatcherStats struct {
	DispatcherID    string          `json:"dispatcher_id"`
	FullName        string          `json:"full_name"`
	UnderReview     int             `json:"under_review"`
	Completed       int             `json:"completed"`
	OverdueInReview int             `json:"overdue_in_review"`
	TotalRewards    decimal.Decimal `json:"total_rewards"`
	TotalPenalties  decimal.Decimal `json:"total_penalties"`
}

// StatsResponse represents the response for GET /stats.
type StatsResponse struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Dispatchers []DispatcherStats `json:"dispatchers"`
}

// OrderTasksResponse represents the response for GET /orders/{id}/tasks.
type OrderTasksResponse struct {
	OrderID int64   `json:"order_id"`
	TaskIDs []int64 `json:"task_ids"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func warnings(w []string) []string {
	if w == nil {
		return []string{}
	}
	return w
}

// ToTaskDetail converts a domain task to TaskDetail, projecting compensation as of now.
func ToTaskDetail(task *domain.Task, now time.Time) TaskDetail {
	detail := TaskDetail{
		ID:                        task.ID,
		UUID:                      task.UUID,
		Title:                     task.Title,
		Description:               task.Description,
		Status:                    string(task.Status),
		ResponsibleUserID:         task.ResponsibleUserID,
		OrderID:                   task.OrderID,
		DueDate:                   task.DueDate,
		OriginalDeadline:          task.OriginalDeadline,
		IsLocked:                  task.IsLocked,
		ReturnsCount:              task.ReviewReturns.Count(),
		Salary:                    task.Salary,
		DispatcherID:              task.DispatcherID,
		DispatcherPercentage:      task.DispatcherPercentage,
		DispatcherRewardAmount:    task.DispatcherRewardAmount,
		DispatcherRewardApplied:   task.DispatcherRewardApplied,
		DispatcherRewardAppliedAt: task.DispatcherRewardAppliedAt,
		PenaltyApplied:            task.PenaltyApplied,
		CompletedAt:               task.CompletedAt,
		ExecutionTimeSeconds:      task.ExecutionTimeSeconds,
		CreatedAt:                 task.CreatedAt,
		UpdatedAt:                 task.UpdatedAt,
	}

	// completed tasks are judged at their completion time
	at := now
	if task.CompletedAt != nil {
		at = *task.CompletedAt
	}
	detail.IsOverdue = task.IsOverdue(at)

	comp := service.CalculateCompensation(task, at)
	if task.Salary != nil {
		payment := comp.WorkerPayment
		detail.ProjectedWorkerPayment = &payment
	}
	if comp.Settleable {
		reward := comp.DispatcherReward
		detail.ProjectedDispatcherReward = &reward
	}

	return detail
}

// ToReviewReturnInfos converts the ledger to its response form.
func ToReviewReturnInfos(ledger domain.ReviewLedger) []ReviewReturnInfo {
	infos := make([]ReviewReturnInfo, len(ledger))
	for i, r := range ledger {
		infos[i] = ReviewReturnInfo{
			ReturnNumber: r.ReturnNumber,
			Comment:      r.Comment,
			ReturnedAt:   r.ReturnedAt,
		}
	}
	return infos
}

// ToPenaltyInfo converts a penalty log entry to its response form.
func ToPenaltyInfo(entry *domain.AdminPenaltyLogEntry) PenaltyInfo {
	return PenaltyInfo{
		ID:            entry.ID,
		AdminID:       entry.AdminID,
		DispatcherID:  entry.DispatcherID,
		PenaltyAmount: entry.PenaltyAmount,
		Reason:        entry.Reason,
		CreatedAt:     entry.CreatedAt,
	}
}

// ToSubmitResponse converts a service submit result.
func ToSubmitResponse(result *service.SubmitResult, now time.Time) SubmitResponse {
	return SubmitResponse{
		Task:               ToTaskDetail(result.Task, now),
		DispatcherAssigned: result.DispatcherAssigned,
		Warnings:           warnings(result.Warnings),
	}
}

// ToApprovalResponse converts a service approval result.
func ToApprovalResponse(result *service.ApprovalResult) ApprovalResponse {
	resp := ApprovalResponse{
		TaskID:           result.TaskID,
		CompletedAt:      result.CompletedAt,
		RewardApplied:    result.RewardApplied,
		Overdue:          result.Overdue,
		DispatcherID:     optional(result.DispatcherID),
		DispatcherReward: result.DispatcherReward,
		WorkerID:         optional(result.WorkerID),
		WorkerPayment:    result.WorkerPayment,
		WorkerCredited:   result.WorkerCredited,
		Warnings:         warnings(result.Warnings),
	}
	if result.RewardApplied {
		salary := result.DispatcherSalary
		resp.DispatcherSalary = &salary
	}
	return resp
}

// ToReturnResponse converts a ledger entry.
func ToReturnResponse(entry *domain.ReviewReturn) ReturnResponse {
	return ReturnResponse{
		TaskID:       entry.TaskID,
		ReturnNumber: entry.ReturnNumber,
		Comment:      entry.Comment,
		ReturnedAt:   entry.ReturnedAt,
	}
}

// ToPenaltyResponse converts a service penalty result.
func ToPenaltyResponse(result *service.PenaltyResult) PenaltyResponse {
	return PenaltyResponse{
		TaskID:           result.TaskID,
		DispatcherID:     result.DispatcherID,
		PenaltyAmount:    result.Amount,
		DispatcherSalary: result.DispatcherSalary,
		Penalty:          ToPenaltyInfo(result.Entry),
	}
}

// ToDeletionResponse converts a service deletion result.
func ToDeletionResponse(result *service.DeletionResult) DeletionResponse {
	return DeletionResponse{
		TaskID:        result.TaskID,
		WorkerID:      optional(result.WorkerID),
		WorkerDebited: result.WorkerDebited,
		WorkerSalary:  result.WorkerSalary,
		Warnings:      warnings(result.Warnings),
	}
}

// ToReviewQueueResponse converts a repository queue page.
func ToReviewQueueResponse(queue *repository.ReviewQueue, limit, offset int) ReviewQueueResponse {
	items := make([]ReviewQueueItem, len(queue.Items))
	for i, item := range queue.Items {
		items[i] = ReviewQueueItem{
			ID:               item.Task.ID,
			Title:            item.Task.Title,
			WorkerID:         item.Task.ResponsibleUserID,
			WorkerName:       item.WorkerName,
			OrderID:          item.Task.OrderID,
			OrderTitle:       item.OrderTitle,
			ClientName:       item.ClientName,
			DueDate:          item.Task.DueDate,
			OriginalDeadline: item.Task.OriginalDeadline,
			Salary:           item.Task.Salary,
			IsOverdue:        item.IsOverdue,
			ReturnsCount:     item.ReturnsCount,
		}
	}
	return ReviewQueueResponse{
		Tasks:        items,
		Total:        queue.Total,
		OverdueCount: queue.OverdueCount,
		Limit:        limit,
		Offset:       offset,
	}
}

// ToDispatcherStats converts repository stats rows.
func ToDispatcherStats(rows []repository.DispatcherStatsResult) []DispatcherStats {
	stats := make([]DispatcherStats, len(rows))
	for i, row := range rows {
		stats[i] = DispatcherStats{
			DispatcherID:    row.DispatcherID,
			FullName:        row.FullName,
			UnderReview:     row.UnderReview,
			Completed:       row.Completed,
			OverdueInReview: row.OverdueInReview,
			TotalRewards:    row.TotalRewards,
			TotalPenalties:  row.TotalPenalties,
		}
	}
	return stats
}

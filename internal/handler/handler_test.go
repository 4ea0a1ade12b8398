package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/mtlprog/taskreview/internal/database"
	"github.com/mtlprog/taskreview/internal/handler"
	"github.com/mtlprog/taskreview/internal/handler/dto"
)

const (
	adminID       = "00000000-0000-0000-0000-000000000001"
	dispatcherID  = "00000000-0000-0000-0000-000000000002"
	dispatcher2ID = "00000000-0000-0000-0000-000000000003"
	workerID      = "00000000-0000-0000-0000-000000000004"

	adminToken       = "token-admin"
	dispatcherToken  = "token-dispatcher"
	dispatcher2Token = "token-dispatcher-2"
	workerToken      = "token-worker"
)

type HandlerTestSuite struct {
	suite.Suite
	pool *pgxpool.Pool
	mux  *http.ServeMux

	orderID int64
	taskID  int64
}

func (s *HandlerTestSuite) SetupSuite() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		s.T().Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.New(ctx, databaseURL)
	s.Require().NoError(err)
	s.pool = db.Pool()

	err = database.RunMigrations(ctx, s.pool)
	s.Require().NoError(err)

	s.mux = http.NewServeMux()
	handler.New(s.pool).RegisterRoutes(s.mux)
}

func (s *HandlerTestSuite) SetupTest() {
	ctx := context.Background()

	_, err := s.pool.Exec(ctx, `TRUNCATE users, orders, automation_settings, tasks,
		review_returns, completed_tasks, admin_penalty_log RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)

	_, err = s.pool.Exec(ctx, `
		INSERT INTO users (id, full_name, role, token, salary)
		VALUES
			($1, 'Ada Admin', 'admin', $5, 0),
			($2, 'Dora Dispatcher', 'dispatcher', $6, 0),
			($3, 'Dan Dispatcher', 'dispatcher', $7, 0),
			($4, 'Walt Worker', 'worker', $8, 0)
	`, adminID, dispatcherID, dispatcher2ID, workerID,
		adminToken, dispatcherToken, dispatcher2Token, workerToken)
	s.Require().NoError(err)

	err = s.pool.QueryRow(ctx, `
		INSERT INTO orders (title, client_name, stage) VALUES ('Kitchen', 'ACME', 'assembly')
		RETURNING id
	`).Scan(&s.orderID)
	s.Require().NoError(err)

	_, err = s.pool.Exec(ctx, `
		INSERT INTO automation_settings (stage_id, dispatcher_id, dispatcher_percentage)
		VALUES ('assembly', $1, 10)
	`, dispatcherID)
	s.Require().NoError(err)

	err = s.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, status, responsible_user_id, order_id, due_date, salary)
		VALUES ('Assemble cabinets', 'in_progress', $1, $2, $3, 1000)
		RETURNING id
	`, workerID, s.orderID, time.Now().Add(48*time.Hour)).Scan(&s.taskID)
	s.Require().NoError(err)
}

func (s *HandlerTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

// Helper to make authenticated request
func (s *HandlerTestSuite) makeRequest(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var bodyReader *bytes.Reader
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(bodyBytes)
	} else {
		bodyReader = bytes.NewReader([]byte{})
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.mux.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) taskPath(suffix string) string {
	return "/api/v1/tasks/" + strconv.FormatInt(s.taskID, 10) + suffix
}

func (s *HandlerTestSuite) salary(userID string) decimal.Decimal {
	var salary decimal.Decimal
	err := s.pool.QueryRow(context.Background(), `SELECT salary FROM users WHERE id = $1`, userID).Scan(&salary)
	s.Require().NoError(err)
	return salary
}

func (s *HandlerTestSuite) errorCode(w *httptest.ResponseRecorder) string {
	var resp dto.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error.Code
}

func (s *HandlerTestSuite) submitAndApprove() dto.ApprovalResponse {
	w := s.makeRequest("POST", s.taskPath("/submit"), workerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.makeRequest("POST", s.taskPath("/approve"), dispatcherToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.ApprovalResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *HandlerTestSuite) TestUnauthenticated() {
	w := s.makeRequest("GET", s.taskPath(""), "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.makeRequest("GET", s.taskPath(""), "bogus", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerTestSuite) TestGetTask_InvalidID() {
	w := s.makeRequest("GET", "/api/v1/tasks/abc", adminToken, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("INVALID_REQUEST", s.errorCode(w))

	w = s.makeRequest("GET", "/api/v1/tasks/999999", adminToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("TASK_NOT_FOUND", s.errorCode(w))
}

func (s *HandlerTestSuite) TestSubmit_AssignsDispatcherFromStage() {
	w := s.makeRequest("POST", s.taskPath("/submit"), workerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.SubmitResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.True(resp.DispatcherAssigned)
	s.Equal("under_review", resp.Task.Status)
	s.True(resp.Task.IsLocked)
	s.Require().NotNil(resp.Task.DispatcherID)
	s.Equal(dispatcherID, *resp.Task.DispatcherID)
	s.Require().NotNil(resp.Task.OriginalDeadline)

	// Second submit hits the lock
	w = s.makeRequest("POST", s.taskPath("/submit"), workerToken, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("TASK_LOCKED", s.errorCode(w))
}

func (s *HandlerTestSuite) TestSubmit_OtherUserForbidden() {
	w := s.makeRequest("POST", s.taskPath("/submit"), dispatcher2Token, nil)
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("INSUFFICIENT_ACCESS", s.errorCode(w))
}

func (s *HandlerTestSuite) TestApprove_SettlesOnce() {
	resp := s.submitAndApprove()

	s.True(resp.RewardApplied)
	s.False(resp.Overdue)
	s.True(resp.DispatcherReward.Equal(decimal.NewFromInt(100)))
	s.True(resp.WorkerPayment.Equal(decimal.NewFromInt(1000)))
	s.True(resp.WorkerCredited)

	s.True(s.salary(dispatcherID).Equal(decimal.NewFromInt(100)))
	s.True(s.salary(workerID).Equal(decimal.NewFromInt(1000)))

	var credited int
	err := s.pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM completed_tasks WHERE worker_id = $1 AND task_id = $2`,
		workerID, s.taskID).Scan(&credited)
	s.Require().NoError(err)
	s.Equal(1, credited)

	w := s.makeRequest("POST", s.taskPath("/approve"), dispatcherToken, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("ALREADY_SETTLED", s.errorCode(w))
	s.True(s.salary(dispatcherID).Equal(decimal.NewFromInt(100)))
}

func (s *HandlerTestSuite) TestApprove_Concurrent() {
	w := s.makeRequest("POST", s.taskPath("/submit"), workerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	const attempts = 5
	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = s.makeRequest("POST", s.taskPath("/approve"), dispatcherToken, nil).Code
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, code := range codes {
		if code == http.StatusOK {
			ok++
		} else {
			s.Equal(http.StatusConflict, code)
		}
	}
	s.Equal(1, ok)
	s.True(s.salary(dispatcherID).Equal(decimal.NewFromInt(100)))
}

func (s *HandlerTestSuite) TestApprove_WithoutAutomationSettingIsRefused() {
	_, err := s.pool.Exec(context.Background(), `DELETE FROM automation_settings`)
	s.Require().NoError(err)

	w := s.makeRequest("POST", s.taskPath("/submit"), workerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.makeRequest("POST", s.taskPath("/approve"), adminToken, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("NOT_SETTLEABLE", s.errorCode(w))

	w = s.makeRequest("GET", s.taskPath(""), adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var detail dto.TaskDetailResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &detail))
	s.Equal("under_review", detail.Task.Status)
	s.True(s.salary(workerID).IsZero())
}

func (s *HandlerTestSuite) TestApprove_WrongDispatcher() {
	w := s.makeRequest("POST", s.taskPath("/submit"), workerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.makeRequest("POST", s.taskPath("/approve"), dispatcher2Token, nil)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerTestSuite) TestReturn() {
	w := s.makeRequest("POST", s.taskPath("/submit"), workerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.makeRequest("POST", s.taskPath("/return"), dispatcherToken, dto.ReturnTaskRequest{Comment: "   "})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("VALIDATION_ERROR", s.errorCode(w))

	w = s.makeRequest("POST", s.taskPath("/return"), dispatcherToken, nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("VALIDATION_ERROR", s.errorCode(w))

	w = s.makeRequest("POST", s.taskPath("/return"), dispatcherToken, dto.ReturnTaskRequest{Comment: "hinges are loose"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var ret dto.ReturnResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &ret))
	s.Equal(1, ret.ReturnNumber)
	s.Equal("hinges are loose", ret.Comment)

	w = s.makeRequest("GET", s.taskPath(""), workerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var detail dto.TaskDetailResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &detail))
	s.Equal("in_progress", detail.Task.Status)
	s.False(detail.Task.IsLocked)
	s.Equal(1, detail.Task.ReturnsCount)
	s.Require().Len(detail.ReviewReturns, 1)
	s.Equal("hinges are loose", detail.ReviewReturns[0].Comment)

	// Resubmit and return again: numbering continues
	w = s.makeRequest("POST", s.taskPath("/submit"), workerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	w = s.makeRequest("POST", s.taskPath("/return"), dispatcherToken, dto.ReturnTaskRequest{Comment: "still loose"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &ret))
	s.Equal(2, ret.ReturnNumber)
}

func (s *HandlerTestSuite) TestPenalty() {
	s.submitAndApprove()

	w := s.makeRequest("POST", s.taskPath("/penalty"), dispatcherToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.makeRequest("POST", s.taskPath("/penalty"), adminToken, dto.PenaltyRequest{Reason: "wrong materials"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.PenaltyResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.True(resp.PenaltyAmount.Equal(decimal.NewFromInt(200)))
	s.True(resp.DispatcherSalary.Equal(decimal.NewFromInt(-100)))
	s.Equal("wrong materials", resp.Penalty.Reason)
	s.Equal(adminID, resp.Penalty.AdminID)

	w = s.makeRequest("POST", s.taskPath("/penalty"), adminToken, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("PENALTY_ALREADY_APPLIED", s.errorCode(w))
	s.True(s.salary(dispatcherID).Equal(decimal.NewFromInt(-100)))
}

func (s *HandlerTestSuite) TestPenalty_DefaultReasonWithoutBody() {
	s.submitAndApprove()

	w := s.makeRequest("POST", s.taskPath("/penalty"), adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.PenaltyResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("dispatcher error", resp.Penalty.Reason)
}

func (s *HandlerTestSuite) TestPenalty_NoReward() {
	w := s.makeRequest("POST", s.taskPath("/penalty"), adminToken, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("NO_REWARD_TO_PENALIZE", s.errorCode(w))
}

func (s *HandlerTestSuite) TestDelete_ReversesWorkerCredit() {
	s.submitAndApprove()

	w := s.makeRequest("DELETE", s.taskPath(""), dispatcherToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.makeRequest("DELETE", s.taskPath(""), adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.DeletionResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.True(resp.WorkerDebited.Equal(decimal.NewFromInt(1000)))
	s.True(s.salary(workerID).IsZero())

	w = s.makeRequest("GET", s.taskPath(""), adminToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerTestSuite) TestReviewQueue() {
	w := s.makeRequest("POST", s.taskPath("/submit"), workerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.makeRequest("GET", "/api/v1/review-queue", dispatcherToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var queue dto.ReviewQueueResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &queue))
	s.Equal(1, queue.Total)
	s.Equal(0, queue.OverdueCount)
	s.Require().Len(queue.Tasks, 1)
	s.Equal(s.taskID, queue.Tasks[0].ID)
	s.Require().NotNil(queue.Tasks[0].WorkerName)
	s.Equal("Walt Worker", *queue.Tasks[0].WorkerName)

	// Another dispatcher sees an empty queue
	w = s.makeRequest("GET", "/api/v1/review-queue", dispatcher2Token, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &queue))
	s.Equal(0, queue.Total)

	w = s.makeRequest("GET", "/api/v1/review-queue?dispatcher_id="+dispatcherID, dispatcher2Token, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.makeRequest("GET", "/api/v1/review-queue", workerToken, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.makeRequest("GET", "/api/v1/review-queue?limit=0", adminToken, nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *HandlerTestSuite) TestStats() {
	s.submitAndApprove()

	w := s.makeRequest("GET", "/api/v1/stats?dispatcher_id="+dispatcherID, adminToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var stats dto.StatsResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &stats))
	s.Require().Len(stats.Dispatchers, 1)
	s.Equal(dispatcherID, stats.Dispatchers[0].DispatcherID)
	s.Equal(1, stats.Dispatchers[0].Completed)
	s.True(stats.Dispatchers[0].TotalRewards.Equal(decimal.NewFromInt(100)))

	w = s.makeRequest("GET", "/api/v1/stats", workerToken, nil)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerTestSuite) TestOrderTasks() {
	path := "/api/v1/orders/" + strconv.FormatInt(s.orderID, 10) + "/tasks"
	w := s.makeRequest("GET", path, workerToken, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.OrderTasksResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(s.orderID, resp.OrderID)
	s.Equal([]int64{s.taskID}, resp.TaskIDs)

	w = s.makeRequest("GET", "/api/v1/orders/999999/tasks", workerToken, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

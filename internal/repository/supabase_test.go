package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/equilibra/internal/model"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

type restResponse struct {
	Status  int
	Body    string
	Headers map[string]string
}

// fakePostgrest answers every request with the queued response and records it.
type fakePostgrest struct {
	mu       sync.Mutex
	requests []recordedRequest
	next     restResponse
}

func (f *fakePostgrest) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	resp := f.next
	f.mu.Unlock()

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.Header().Set("Content-Type", "application/json")
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp.Body)
}

func (f *fakePostgrest) respond(resp restResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next = resp
}

func (f *fakePostgrest) last(t *testing.T) recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.requests)
	return f.requests[len(f.requests)-1]
}

func newSupabaseFixture(t *testing.T) (*SupabaseRepository, *fakePostgrest) {
	fake := &fakePostgrest{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	repo, err := NewSupabaseRepository(srv.URL, "anon-key", zerolog.Nop())
	require.NoError(t, err)
	repo.now = func() time.Time { return time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC) }
	return repo, fake
}

func TestNewSupabaseRepositoryRequiresCredentials(t *testing.T) {
	_, err := NewSupabaseRepository("", "", zerolog.Nop())
	assert.Error(t, err)
}

func TestSupabaseCreateTransactionDecodesReturnedRow(t *testing.T) {
	repo, fake := newSupabaseFixture(t)
	fake.respond(restResponse{
		Status: http.StatusCreated,
		Body: `[{"id":"t1","user_id":"u1","description":"Lunch","amount":12.5,"type":"expense",
			"category":"Groceries","account_id":"a1","card_id":null,"date":"2024-03-10",
			"created_at":"2024-03-10T12:00:00Z"}]`,
	})

	category, account := "Groceries", "a1"
	tx := &model.Transaction{
		UserID:      "u1",
		Description: "Lunch",
		Amount:      12.5,
		Type:        model.TypeExpense,
		Category:    &category,
		AccountID:   &account,
		Date:        model.DateOf(2024, time.March, 10),
	}
	require.NoError(t, repo.CreateTransaction(context.Background(), tx))

	assert.Equal(t, "t1", tx.ID)
	require.NotNil(t, tx.CreatedAt)
	assert.Equal(t, time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC), tx.CreatedAt.UTC())
	assert.Nil(t, tx.CardID)

	req := fake.last(t)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/rest/v1/transactions", req.Path)
	assert.Contains(t, req.Header.Get("Prefer"), "return=representation")
	assert.Equal(t, "anon-key", req.Header.Get("apikey"))

	var sent map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &sent))
	assert.Equal(t, "u1", sent["user_id"])
	assert.Equal(t, "2024-03-10", sent["date"])
	assert.Equal(t, "expense", sent["type"])
}

func TestSupabaseCreateFallsBackToSentRow(t *testing.T) {
	repo, fake := newSupabaseFixture(t)
	fake.respond(restResponse{Status: http.StatusCreated, Body: `[]`})

	account := &model.Account{UserID: "u1", Name: "Wallet"}
	require.NoError(t, repo.CreateAccount(context.Background(), account))
	assert.Equal(t, "Wallet", account.Name)
}

func TestSupabaseGetAlertWithoutRows(t *testing.T) {
	repo, fake := newSupabaseFixture(t)
	fake.respond(restResponse{
		Status: http.StatusNotAcceptable,
		Body:   `{"code":"PGRST116","details":"The result contains 0 rows","message":"JSON object requested, multiple (or no) rows returned"}`,
	})

	alert, err := repo.GetAlert(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, alert)

	req := fake.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/rest/v1/spending_alerts", req.Path)
	assert.Equal(t, "eq.u1", req.Query.Get("user_id"))
	assert.Equal(t, "application/vnd.pgrst.object+json", req.Header.Get("Accept"))
}

func TestSupabaseGetAlertDecodesObject(t *testing.T) {
	repo, fake := newSupabaseFixture(t)
	fake.respond(restResponse{Body: `{"id":"al1","user_id":"u1","monthly_limit":1500,"enabled":true}`})

	alert, err := repo.GetAlert(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, alert)
	assert.Equal(t, "al1", alert.ID)
	assert.Equal(t, 1500.0, alert.MonthlyLimit)
	assert.True(t, alert.Enabled)
}

func TestSupabaseSingleRowLookupsMapNoRowsToNotFound(t *testing.T) {
	repo, fake := newSupabaseFixture(t)
	fake.respond(restResponse{
		Status: http.StatusNotAcceptable,
		Body:   `{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`,
	})
	ctx := context.Background()

	_, err := repo.GetProfile(ctx, "u1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "eq.u1", fake.last(t).Query.Get("id"))

	_, err = repo.GetTransaction(ctx, "t1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetGoal(ctx, "g1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSupabaseServerErrorIsWrapped(t *testing.T) {
	repo, fake := newSupabaseFixture(t)
	fake.respond(restResponse{
		Status: http.StatusInternalServerError,
		Body:   `{"code":"XX000","message":"database unavailable"}`,
	})

	_, err := repo.GetAlert(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get spending alert")
	assert.Contains(t, err.Error(), "database unavailable")
}

func TestSupabaseListTransactionsFilters(t *testing.T) {
	repo, fake := newSupabaseFixture(t)
	fake.respond(restResponse{Body: `[
		{"id":"t2","user_id":"u1","description":"b","amount":5,"type":"expense","date":"2024-03-20"},
		{"id":"t1","user_id":"u1","description":"a","amount":7,"type":"expense","date":"2024-03-02"}
	]`})

	expense := model.TypeExpense
	start := model.DateOf(2024, time.March, 1)
	end := model.DateOf(2024, time.March, 31)
	txs, err := repo.ListTransactions(context.Background(), "u1", model.TransactionFilter{
		Type:      &expense,
		StartDate: &start,
		EndDate:   &end,
		Limit:     10,
	})
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "t2", txs[0].ID)
	assert.Equal(t, model.DateOf(2024, time.March, 2), txs[1].Date)

	req := fake.last(t)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/rest/v1/transactions", req.Path)
	assert.Equal(t, "*", req.Query.Get("select"))
	assert.Equal(t, "eq.u1", req.Query.Get("user_id"))
	assert.Equal(t, "eq.expense", req.Query.Get("type"))
	assert.Equal(t, "(date.gte.2024-03-01,date.lte.2024-03-31)", req.Query.Get("and"))
	assert.Empty(t, req.Query.Get("date"), "both bounds travel in and=()")
	assert.Equal(t, "date.desc.nullslast,created_at.desc.nullslast", req.Query.Get("order"))
	assert.Equal(t, "10", req.Query.Get("limit"))
}

func TestSupabaseListTransactionsSingleBound(t *testing.T) {
	repo, fake := newSupabaseFixture(t)
	fake.respond(restResponse{Body: `[]`})
	ctx := context.Background()

	start := model.DateOf(2024, time.March, 1)
	txs, err := repo.ListTransactions(ctx, "u1", model.TransactionFilter{StartDate: &start})
	require.NoError(t, err)
	assert.Empty(t, txs)
	req := fake.last(t)
	assert.Equal(t, "gte.2024-03-01", req.Query.Get("date"))
	assert.Empty(t, req.Query.Get("and"))
	assert.Empty(t, req.Query.Get("limit"))

	end := model.DateOf(2024, time.March, 31)
	_, err = repo.ListTransactions(ctx, "u1", model.TransactionFilter{EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, "lte.2024-03-31", fake.last(t).Query.Get("date"))
}

func TestSupabaseCountAchievementsReadsContentRange(t *testing.T) {
	repo, fake := newSupabaseFixture(t)
	fake.respond(restResponse{Headers: map[string]string{"Content-Range": "*/3"}})

	n, err := repo.CountAchievements(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	req := fake.last(t)
	assert.Equal(t, http.MethodHead, req.Method)
	assert.Equal(t, "/rest/v1/achievements", req.Path)
	assert.Equal(t, "eq.u1", req.Query.Get("user_id"))
	assert.Equal(t, "count=exact", req.Header.Get("Prefer"))
}

func TestSupabaseCountGoalsFiltersStatus(t *testing.T) {
	repo, fake := newSupabaseFixture(t)
	fake.respond(restResponse{Headers: map[string]string{"Content-Range": "0-1/2"}})

	n, err := repo.CountGoals(context.Background(), "u1", model.GoalCompleted)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	req := fake.last(t)
	assert.Equal(t, "eq.u1", req.Query.Get("user_id"))
	assert.Equal(t, "eq."+string(model.GoalCompleted), req.Query.Get("status"))
}

func TestSupabaseUpdateTransaction(t *testing.T) {
	repo, fake := newSupabaseFixture(t)
	ctx := context.Background()

	fake.respond(restResponse{Body: `[]`})
	err := repo.UpdateTransaction(ctx, &model.Transaction{ID: "missing", UserID: "u1"})
	assert.ErrorIs(t, err, ErrNotFound)

	req := fake.last(t)
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "eq.missing", req.Query.Get("id"))

	fake.respond(restResponse{Body: `[{"id":"t1","user_id":"u1","description":"Dinner","amount":30,"type":"expense","date":"2024-03-10"}]`})
	tx := &model.Transaction{ID: "t1", UserID: "u1", Description: "Dinner", Amount: 30, Type: model.TypeExpense}
	require.NoError(t, repo.UpdateTransaction(ctx, tx))
	assert.Equal(t, model.DateOf(2024, time.March, 10), tx.Date)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(fake.last(t).Body, &sent))
	assert.Equal(t, "2024-03-15T10:00:00Z", sent["updated_at"])
}

func TestSupabaseDelete(t *testing.T) {
	repo, fake := newSupabaseFixture(t)
	fake.respond(restResponse{Status: http.StatusNoContent})

	require.NoError(t, repo.DeleteCard(context.Background(), "c1"))
	req := fake.last(t)
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/rest/v1/credit_cards", req.Path)
	assert.Equal(t, "eq.c1", req.Query.Get("id"))
}

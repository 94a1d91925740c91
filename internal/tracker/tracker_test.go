package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallops/triage/internal/dedup"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateAndGetIssue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	number, err := store.CreateIssue(ctx, "High error rate on checkout", "details here", []string{"triage", "critical"})
	require.NoError(t, err)
	assert.Equal(t, 1, number)

	issue, err := store.GetIssue(ctx, number)
	require.NoError(t, err)
	require.NotNil(t, issue)
	assert.Equal(t, "High error rate on checkout", issue.Title)
	assert.Equal(t, "open", issue.State)
	assert.Equal(t, []string{"critical", "triage"}, issue.Labels)
	assert.Nil(t, issue.ClosedAt)
}

func TestGetIssueMissingReturnsNil(t *testing.T) {
	store := newTestStore(t)
	issue, err := store.GetIssue(context.Background(), 999)
	require.NoError(t, err)
	assert.Nil(t, issue)
}

func TestCreateIssueRequiresTitle(t *testing.T) {
	store := newTestStore(t)
	_, err := store.CreateIssue(context.Background(), "", "body", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title is required")
}

func TestAddComment(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	number, err := store.CreateIssue(ctx, "Something broke", "", []string{"triage"})
	require.NoError(t, err)

	require.NoError(t, store.AddComment(ctx, number, "triage-bot", "duplicate alert seen"))

	err = store.AddComment(ctx, 12345, "triage-bot", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestCloseIssue(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	number, err := store.CreateIssue(ctx, "Transient blip", "", nil)
	require.NoError(t, err)
	require.NoError(t, store.CloseIssue(ctx, number))

	issue, err := store.GetIssue(ctx, number)
	require.NoError(t, err)
	assert.Equal(t, "closed", issue.State)
	assert.NotNil(t, issue.ClosedAt)

	err = store.CloseIssue(ctx, number)
	require.Error(t, err, "closing twice fails")
}

func TestListIssuesFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	labeled, err := store.CreateIssue(ctx, "Labeled open", "body", []string{"triage"})
	require.NoError(t, err)
	unlabeled, err := store.CreateIssue(ctx, "Unlabeled open", "body", nil)
	require.NoError(t, err)
	closed, err := store.CreateIssue(ctx, "Labeled closed", "body", []string{"triage"})
	require.NoError(t, err)
	require.NoError(t, store.CloseIssue(ctx, closed))

	open, err := store.ListIssues(ctx, dedup.IssueQuery{Label: "triage", State: "open"})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, labeled, open[0].Number)

	all, err := store.ListIssues(ctx, dedup.IssueQuery{Label: "triage", State: "all"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	everything, err := store.ListIssues(ctx, dedup.IssueQuery{State: "all"})
	require.NoError(t, err)
	assert.Len(t, everything, 3)
	_ = unlabeled
}

func TestListIssuesNewestFirstAndLimited(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := store.CreateIssue(ctx, "issue", "body", []string{"triage"})
		require.NoError(t, err)
	}

	issues, err := store.ListIssues(ctx, dedup.IssueQuery{Label: "triage", State: "open", Limit: 3})
	require.NoError(t, err)
	require.Len(t, issues, 3)
	assert.Equal(t, 5, issues[0].Number, "newest first")
	assert.Equal(t, 3, issues[2].Number)
}

func TestListIssuesSinceBound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateIssue(ctx, "recent", "body", []string{"triage"})
	require.NoError(t, err)

	issues, err := store.ListIssues(ctx, dedup.IssueQuery{
		Label: "triage",
		State: "open",
		Since: time.Now().Add(-time.Hour),
	})
	require.NoError(t, err)
	assert.Len(t, issues, 1)

	issues, err = store.ListIssues(ctx, dedup.IssueQuery{
		Label: "triage",
		State: "open",
		Since: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Empty(t, issues)
}

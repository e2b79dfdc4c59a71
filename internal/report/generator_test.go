package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/La-Clique-qui-Recycle/Recyclic-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closedSession() *model.Session {
	now := time.Now()
	closing := decimal.NewFromFloat(140)
	actual := decimal.NewFromFloat(150)
	variance := decimal.NewFromFloat(10)
	return &model.Session{
		ID:            uuid.New(),
		OperatorID:    uuid.New(),
		SiteID:        uuid.New(),
		Status:        model.SessionClosed,
		InitialAmount: decimal.NewFromFloat(100),
		CurrentAmount: actual,
		ClosingAmount: &closing,
		ActualAmount:  &actual,
		Variance:      &variance,
		OpenedAt:      now.Add(-8 * time.Hour),
		ClosedAt:      &now,
		Sales: []model.Sale{
			{ID: uuid.New(), TotalAmount: decimal.NewFromFloat(25.50), Label: "Vente matin"},
			{ID: uuid.New(), TotalAmount: decimal.NewFromFloat(14.50), Label: "Vente après-midi"},
		},
	}
}

func readRows(t *testing.T, path string) map[[2]string]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, []string{"section", "field", "value"}, records[0])

	rows := make(map[[2]string]string)
	for _, rec := range records[1:] {
		require.Len(t, rec, 3)
		rows[[2]string{rec[0], rec[1]}] = rec[2]
	}
	return rows
}

func TestGenerateWritesCSVArtifact(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, "caisse_session", 0, false)
	sess := closedSession()

	filename, err := g.Generate(sess)
	require.NoError(t, err)
	assert.Contains(t, filename, "caisse_session_"+sess.ID.String())
	assert.Contains(t, filename, ".csv")

	rows := readRows(t, filepath.Join(dir, filename))
	assert.Equal(t, sess.ID.String(), rows[[2]string{"summary", "session_id"}])
	assert.Equal(t, "100.00", rows[[2]string{"summary", "initial_amount"}])
	assert.Equal(t, "140.00", rows[[2]string{"summary", "closing_amount"}])
	assert.Equal(t, "150.00", rows[[2]string{"summary", "actual_amount"}])
	assert.Equal(t, "10.00", rows[[2]string{"summary", "variance"}])
	assert.Equal(t, "2", rows[[2]string{"sales", "count"}])
	assert.Equal(t, "40.00", rows[[2]string{"sales", "total"}])
	assert.Equal(t, "25.50", rows[[2]string{"sale", "Vente matin"}])
}

func TestGenerateLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, "caisse_session", 0, true)

	_, err := g.Generate(closedSession())
	require.NoError(t, err)

	// Both artifacts publish via temp-then-rename: the dir holds exactly the
	// CSV and the PDF, never an in-progress file.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp-report-")
	}
}

func TestTruncateLabelIsRuneSafe(t *testing.T) {
	long := strings.Repeat("é", 40)
	got := truncateLabel(long, 34)
	assert.Len(t, []rune(got), 34)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("é", 33)+"…", got)

	assert.Equal(t, "Vente après-midi", truncateLabel("Vente après-midi", 34))
}

func TestRetentionSweepRemovesStaleArtifacts(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, "caisse_session", 30, false)

	stale := filepath.Join(dir, "caisse_session_old.csv")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	old := time.Now().AddDate(0, 0, -40)
	require.NoError(t, os.Chtimes(stale, old, old))

	fresh := filepath.Join(dir, "caisse_session_recent.csv")
	require.NoError(t, os.WriteFile(fresh, []byte("recent"), 0o644))

	filename, err := g.Generate(closedSession())
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale artifact should be swept")
	_, err = os.Stat(fresh)
	assert.NoError(t, err, "artifact inside the window stays")
	_, err = os.Stat(filepath.Join(dir, filename))
	assert.NoError(t, err)
}

func TestRetentionNeverRemovesJustWrittenArtifact(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, "caisse_session", 30, false)

	// Clock pinned far in the future: everything on disk, including the file
	// this very call writes, sits past the cutoff. Only the exclusion keeps
	// the fresh artifact alive.
	g.now = func() time.Time { return time.Now().AddDate(0, 0, 60) }

	other := filepath.Join(dir, "caisse_session_other.csv")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))

	filename, err := g.Generate(closedSession())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, filename))
	assert.NoError(t, err, "the artifact written by this call must survive its own sweep")
	_, err = os.Stat(other)
	assert.True(t, os.IsNotExist(err))
}

func TestRetentionDisabled(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, "caisse_session", 0, false)

	ancient := filepath.Join(dir, "caisse_session_ancient.csv")
	require.NoError(t, os.WriteFile(ancient, []byte("x"), 0o644))
	old := time.Now().AddDate(-1, 0, 0)
	require.NoError(t, os.Chtimes(ancient, old, old))

	_, err := g.Generate(closedSession())
	require.NoError(t, err)

	_, err = os.Stat(ancient)
	assert.NoError(t, err, "retention 0 disables the sweep entirely")
}

func TestGenerateWithPDFSummary(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, "caisse_session", 0, true)

	filename, err := g.Generate(closedSession())
	require.NoError(t, err)

	pdf := filename[:len(filename)-len(".csv")] + ".pdf"
	info, err := os.Stat(filepath.Join(dir, pdf))
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

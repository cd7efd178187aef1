package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrmigrate/rekon/internal/orgs"
	"github.com/hrmigrate/rekon/pkg/errors"
	"github.com/hrmigrate/rekon/pkg/records"
	"github.com/hrmigrate/rekon/pkg/store"
)

const gridFile = `NO PEKERJA,,AB12
NAMA,,AHMAD BIN ALI,,JANTINA,,L
NO K/P BARU,,830211045678,,TARIKH LAHIR,,11/02/1983
JABATAN,,STOR,,GRED,,A1
GAJI POKOK,,"RM 1,850.00"
NAMA BANK,,MAYBANK,,NO AKAUN,,512345678901
NO PEKERJA,,AB13
NAMA,,SITI AMINAH,,JANTINA,,P
`

const narrativeFile = `LAPORAN PERIBADI PEKERJA

NO PEKERJA : AB12
NAMA             :  AHMAD BIN ALI
JABATAN          :  PENTADBIRAN
JAWATAN          :  KERANI KANAN
NO KWSP          :  12345678
`

func writeInputs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AB_pay.csv"), []byte(gridFile), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "AB_master.rpt"), []byte(narrativeFile), 0o644))
	return dir
}

func testRegistry(t *testing.T) *orgs.Registry {
	t.Helper()
	r, err := orgs.NewRegistry([]orgs.Org{{Code: "AB", CanonicalID: "ORG-0001", DisplayName: "Alpha Bhd"}})
	require.NoError(t, err)
	return r
}

func TestRunEndToEnd(t *testing.T) {
	mem := store.NewMemory()
	p, err := New(Options{
		InputDir: writeInputs(t),
		Registry: testRegistry(t),
		Store:    mem,
	})
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Employees, 2)
	assert.Equal(t, 0, res.ClassifyFailures)
	assert.Equal(t, 0, res.PersistFailed)
	assert.Equal(t, 2, mem.Len())

	ahmad, ok := mem.Get(records.Key{OrgCode: "AB", EmployeeNo: "AB12"})
	require.True(t, ok)
	assert.Equal(t, "ORG-0001", ahmad.OrgID)
	assert.Equal(t, "AHMAD BIN ALI", ahmad.Personal.Name.Text)

	// Fields only one grammar supplied.
	assert.Equal(t, "KERANI KANAN", ahmad.Employment.Designation.Text)
	assert.Equal(t, "12345678", ahmad.Statutory.EPFNo.Code)
	assert.Equal(t, "MAYBANK", ahmad.Bank.Name.Text)

	// Department disagreed; the narrative value wins and the conflict is
	// recorded in both provenance and the report.
	assert.Equal(t, "PENTADBIRAN", ahmad.Employment.Department.Text)
	require.Len(t, ahmad.Provenance.Conflicts, 1)
	require.Len(t, res.Report.Conflicts, 1)
	assert.Equal(t, "AB/AB12", res.Report.Conflicts[0].Key)

	// Typed values survive the trip.
	assert.Equal(t, records.Date{Year: 1983, Month: 2, Day: 11}, ahmad.Personal.BirthDate.Date)
	assert.Equal(t, "1850.00", ahmad.Compensation.BasicPay.Money.Magnitude.StringFixed(2))

	assert.Len(t, res.Report.Files, 2)
	assert.Equal(t, 2, res.Report.Employees)
	assert.NotEmpty(t, res.Report.RunID)
}

func TestRunIsDeterministic(t *testing.T) {
	dir := writeInputs(t)
	reg := testRegistry(t)

	run := func() *Result {
		p, err := New(Options{InputDir: dir, Registry: reg})
		require.NoError(t, err)
		res, err := p.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	first, second := run(), run()
	assert.Equal(t, first.Employees, second.Employees)
	assert.Equal(t, first.Report.Completeness, second.Report.Completeness)
	assert.Equal(t, first.Report.Conflicts, second.Report.Conflicts)
}

func TestRunCountsUnmappedOrgs(t *testing.T) {
	dir := writeInputs(t)
	p, err := New(Options{InputDir: dir})
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Report.UnmappedOrgs, 1)
	assert.Equal(t, "AB", res.Report.UnmappedOrgs[0].Code)
	assert.Equal(t, 2, res.Report.UnmappedOrgs[0].Records)
	for _, emp := range res.Employees {
		assert.Empty(t, emp.OrgID)
	}
}

func TestRunSurfacesClassifyFailures(t *testing.T) {
	dir := writeInputs(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.pdf"), []byte("x"), 0o644))

	p, err := New(Options{InputDir: dir, Registry: testRegistry(t)})
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.ClassifyFailures)
	require.Len(t, res.Report.Files, 3)
}

func TestRunFailsWithNoClassifiableInputs(t *testing.T) {
	p, err := New(Options{InputDir: t.TempDir()})
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.ErrorIs(t, err, errors.ErrNoFiles)
}

func TestRunFailsOnUnreadableDirectory(t *testing.T) {
	p, err := New(Options{InputDir: filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.Error(t, err)
}

// flakyStore fails transiently before succeeding, to exercise the
// retry path.
type flakyStore struct {
	mem      *store.Memory
	failures int
	calls    int
}

func (f *flakyStore) Upsert(ctx context.Context, emps []records.Employee) (store.BatchResult, error) {
	f.calls++
	if f.calls <= f.failures {
		return store.BatchResult{}, errors.NewPersistError(0, nil, errors.ErrStoreUnavailable)
	}
	return f.mem.Upsert(ctx, emps)
}

func TestPersistRetriesTransientFailures(t *testing.T) {
	flaky := &flakyStore{mem: store.NewMemory(), failures: 1}
	p, err := New(Options{
		InputDir: writeInputs(t),
		Registry: testRegistry(t),
		Store:    flaky,
	})
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.PersistFailed)
	assert.Equal(t, 2, flaky.mem.Len())
	assert.Equal(t, 2, flaky.calls)
}

// brokenStore always fails with a non-transient error.
type brokenStore struct{}

func (brokenStore) Upsert(ctx context.Context, emps []records.Employee) (store.BatchResult, error) {
	return store.BatchResult{}, errors.New("schema mismatch")
}

func TestPersistFailureDoesNotAbortRun(t *testing.T) {
	p, err := New(Options{
		InputDir: writeInputs(t),
		Registry: testRegistry(t),
		Store:    brokenStore{},
	})
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.PersistFailed)
	require.Len(t, res.Employees, 2)
	assert.NotNil(t, res.Report)
}

func TestBatchSizeSplitsUpserts(t *testing.T) {
	counting := &countingStore{mem: store.NewMemory()}
	p, err := New(Options{
		InputDir:  writeInputs(t),
		Registry:  testRegistry(t),
		Store:     counting,
		BatchSize: 1,
	})
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, counting.batches)
}

type countingStore struct {
	mem     *store.Memory
	batches int
}

func (c *countingStore) Upsert(ctx context.Context, emps []records.Employee) (store.BatchResult, error) {
	c.batches++
	return c.mem.Upsert(ctx, emps)
}

func TestOrgFilterRestrictsRun(t *testing.T) {
	dir := writeInputs(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "KL_pay.csv"),
		[]byte("NO PEKERJA,,KL07\nNAMA,,LIM WEI\n"), 0o644))

	p, err := New(Options{InputDir: dir, Registry: testRegistry(t), OrgFilter: "ab"})
	require.NoError(t, err)

	res, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Employees, 2)
	for _, emp := range res.Employees {
		assert.Equal(t, "AB", emp.Key.OrgCode)
	}

	p, err = New(Options{InputDir: dir, OrgFilter: "ZZ"})
	require.NoError(t, err)
	_, err = p.Run(context.Background())
	require.ErrorIs(t, err, errors.ErrNoFiles)
}

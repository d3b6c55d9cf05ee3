package aggregates_test

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/yungbote/lms-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/lms-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/lms-backend/internal/data/ordering"
	"github.com/yungbote/lms-backend/internal/data/repos"
	repotest "github.com/yungbote/lms-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/pkg/dbctx"
	"gorm.io/gorm"
)

type lessonFixture struct {
	ctx     context.Context
	db      *gorm.DB
	lessons repos.LessonRepo
	hooks   *aggtest.HooksRecorder
	agg     aggregates.OrderedGroupAggregate
	course  *types.Course
}

func newLessonFixture(t *testing.T) *lessonFixture {
	t.Helper()
	ctx := context.Background()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	f := &lessonFixture{
		ctx:     ctx,
		db:      db,
		lessons: repos.NewLessonRepo(db, log),
		hooks:   &aggtest.HooksRecorder{},
	}
	f.agg = f.aggregate(nil)
	cat := repotest.SeedCategory(t, ctx, db, "ordering")
	f.course = repotest.SeedCourse(t, ctx, db, cat.ID, "Ordering")
	return f
}

func (f *lessonFixture) aggregate(runner aggregates.TxRunner) aggregates.OrderedGroupAggregate {
	return aggregates.NewOrderedGroupAggregate(aggregates.BaseDeps{
		DB:     f.db,
		Log:    nil,
		Runner: runner,
		Hooks:  f.hooks,
	}, f.lessons, aggregates.OrderedGroupConfig{
		Resource:       "lesson",
		ParentResource: "module",
		VerifyDensity:  true,
	})
}

func (f *lessonFixture) module(t *testing.T, order int) uuid.UUID {
	t.Helper()
	return repotest.SeedModule(t, f.ctx, f.db, f.course.ID, order).ID
}

func (f *lessonFixture) insert(t *testing.T, agg aggregates.OrderedGroupAggregate, moduleID uuid.UUID, title string, desired *int) (domainagg.OrderChange, error) {
	t.Helper()
	return agg.Insert(f.ctx, aggregates.InsertInput{
		GroupID: moduleID,
		Desired: desired,
		Write: func(dbc dbctx.Context, order int) (uuid.UUID, error) {
			row := &types.Lesson{ModuleID: moduleID, Title: title, Order: order, DurationMinutes: 5}
			if err := f.lessons.Create(dbc.Ctx, dbc.Tx, row); err != nil {
				return uuid.Nil, err
			}
			return row.ID, nil
		},
	})
}

func (f *lessonFixture) mustInsert(t *testing.T, moduleID uuid.UUID, title string, desired *int) uuid.UUID {
	t.Helper()
	change, err := f.insert(t, f.agg, moduleID, title, desired)
	if err != nil {
		t.Fatalf("insert %s: %v", title, err)
	}
	return change.RecordID
}

// titles returns the module's lesson titles sorted by order and fails
// unless orders are exactly 1..N.
func (f *lessonFixture) titles(t *testing.T, moduleID uuid.UUID) []string {
	t.Helper()
	var rows []types.Lesson
	if err := f.db.WithContext(f.ctx).Where("module_id = ?", moduleID).Find(&rows).Error; err != nil {
		t.Fatalf("load lessons: %v", err)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Order < rows[j].Order })
	out := make([]string, len(rows))
	for i, r := range rows {
		if r.Order != i+1 {
			t.Fatalf("module %s not dense: position %d holds order %d", moduleID, i+1, r.Order)
		}
		out[i] = r.Title
	}
	return out
}

func intp(v int) *int { return &v }

func TestOrderedGroup_ConcreteScenario(t *testing.T) {
	f := newLessonFixture(t)
	m := f.module(t, 1)
	ids := map[string]uuid.UUID{}
	for _, title := range []string{"A", "B", "C", "D"} {
		ids[title] = f.mustInsert(t, m, title, nil)
	}
	require.Equal(t, []string{"A", "B", "C", "D"}, f.titles(t, m))

	change, err := f.insert(t, f.agg, m, "E", intp(2))
	require.NoError(t, err)
	ids["E"] = change.RecordID
	require.Equal(t, 2, change.Order)
	require.EqualValues(t, 3, change.Shifted)
	require.Equal(t, []string{"A", "E", "B", "C", "D"}, f.titles(t, m))

	change, err = f.agg.Move(f.ctx, aggregates.MoveInput{ID: ids["A"], ToOrder: intp(4)})
	require.NoError(t, err)
	require.Equal(t, 4, change.Order)
	require.Equal(t, domainagg.OrderOpMove, change.Op)
	require.Equal(t, []string{"E", "B", "C", "A", "D"}, f.titles(t, m))

	change, err = f.agg.Delete(f.ctx, aggregates.DeleteInput{ID: ids["C"]})
	require.NoError(t, err)
	require.Equal(t, 3, change.Order)
	require.Equal(t, m, change.GroupID)
	require.Equal(t, []string{"E", "B", "A", "D"}, f.titles(t, m))

	require.Equal(t, 5, f.hooks.StatusCount("aggregate.lesson.insert", "success"))
}

func TestOrderedGroup_InsertClampsDesired(t *testing.T) {
	f := newLessonFixture(t)
	m := f.module(t, 1)
	f.mustInsert(t, m, "A", intp(-3))
	f.mustInsert(t, m, "B", intp(99))
	f.mustInsert(t, m, "C", intp(0))
	require.Equal(t, []string{"C", "A", "B"}, f.titles(t, m))
}

func TestOrderedGroup_MoveOutOfRangeLeavesGroupUntouched(t *testing.T) {
	f := newLessonFixture(t)
	m := f.module(t, 1)
	a := f.mustInsert(t, m, "A", nil)
	f.mustInsert(t, m, "B", nil)

	for _, to := range []int{0, 3, -1} {
		_, err := f.agg.Move(f.ctx, aggregates.MoveInput{ID: a, ToOrder: intp(to)})
		if !domainagg.IsCode(err, domainagg.CodeOutOfRange) {
			t.Fatalf("move to %d: want out_of_range, got %v", to, err)
		}
	}
	require.Equal(t, []string{"A", "B"}, f.titles(t, m))
	require.Equal(t, 3, f.hooks.StatusCount("aggregate.lesson.move", "out_of_range"))
}

func TestOrderedGroup_MoveToSameOrderIsNoop(t *testing.T) {
	f := newLessonFixture(t)
	m := f.module(t, 1)
	f.mustInsert(t, m, "A", nil)
	b := f.mustInsert(t, m, "B", nil)

	change, err := f.agg.Move(f.ctx, aggregates.MoveInput{ID: b, ToOrder: intp(2)})
	require.NoError(t, err)
	require.Zero(t, change.Shifted)
	require.Equal(t, []string{"A", "B"}, f.titles(t, m))
}

func TestOrderedGroup_NotFound(t *testing.T) {
	f := newLessonFixture(t)

	_, err := f.insert(t, f.agg, uuid.New(), "orphan", nil)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("insert into missing module: want not_found, got %v", err)
	}
	_, err = f.agg.Move(f.ctx, aggregates.MoveInput{ID: uuid.New(), ToOrder: intp(1)})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("move missing lesson: want not_found, got %v", err)
	}
	_, err = f.agg.Delete(f.ctx, aggregates.DeleteInput{ID: uuid.New()})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("delete missing lesson: want not_found, got %v", err)
	}

	m := f.module(t, 1)
	a := f.mustInsert(t, m, "A", nil)
	missing := uuid.New()
	_, err = f.agg.Move(f.ctx, aggregates.MoveInput{ID: a, ToGroup: &missing})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("move into missing module: want not_found, got %v", err)
	}
	require.Equal(t, []string{"A"}, f.titles(t, m))
}

func TestOrderedGroup_Validation(t *testing.T) {
	f := newLessonFixture(t)
	_, err := f.insert(t, f.agg, uuid.Nil, "A", nil)
	require.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)
	nilGroup := uuid.Nil
	_, err = f.agg.Move(f.ctx, aggregates.MoveInput{ID: uuid.New(), ToGroup: &nilGroup})
	require.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)
}

func TestOrderedGroup_FailedWriteRollsBackShift(t *testing.T) {
	f := newLessonFixture(t)
	m := f.module(t, 1)
	f.mustInsert(t, m, "A", nil)
	b := f.mustInsert(t, m, "B", nil)
	f.mustInsert(t, m, "C", nil)

	boom := errors.New("write failed")
	_, err := f.agg.Insert(f.ctx, aggregates.InsertInput{
		GroupID: m,
		Desired: intp(1),
		Write: func(dbctx.Context, int) (uuid.UUID, error) {
			return uuid.Nil, boom
		},
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"A", "B", "C"}, f.titles(t, m))

	_, err = f.agg.Move(f.ctx, aggregates.MoveInput{
		ID:      b,
		ToOrder: intp(3),
		Write: func(dbctx.Context, uuid.UUID, int) error {
			return boom
		},
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"A", "B", "C"}, f.titles(t, m))

	_, err = f.agg.Delete(f.ctx, aggregates.DeleteInput{
		ID: b,
		Write: func(dbctx.Context, uuid.UUID) error {
			return boom
		},
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, []string{"A", "B", "C"}, f.titles(t, m))
}

func TestOrderedGroup_CommitFailureRollsBackEverything(t *testing.T) {
	f := newLessonFixture(t)
	m := f.module(t, 1)
	f.mustInsert(t, m, "A", nil)
	f.mustInsert(t, m, "B", nil)

	runner := &aggtest.InjectedTxRunner{DB: f.db, FailCommit: aggtest.ErrInjected}
	_, err := f.insert(t, f.aggregate(runner), m, "X", intp(1))
	require.ErrorIs(t, err, aggtest.ErrInjected)
	require.True(t, domainagg.IsCode(err, domainagg.CodeInternal), "got %v", err)
	require.Equal(t, 1, runner.RollbackCalls)
	require.Equal(t, []string{"A", "B"}, f.titles(t, m))
}

func TestOrderedGroup_CrossGroupMove(t *testing.T) {
	f := newLessonFixture(t)
	m1 := f.module(t, 1)
	m2 := f.module(t, 2)
	f.mustInsert(t, m1, "a", nil)
	b := f.mustInsert(t, m1, "b", nil)
	f.mustInsert(t, m1, "c", nil)
	f.mustInsert(t, m2, "x", nil)
	f.mustInsert(t, m2, "y", nil)

	change, err := f.agg.Move(f.ctx, aggregates.MoveInput{ID: b, ToGroup: &m2, ToOrder: intp(1)})
	require.NoError(t, err)
	require.Equal(t, m2, change.GroupID)
	require.NotNil(t, change.FromGroupID)
	require.Equal(t, m1, *change.FromGroupID)
	require.ElementsMatch(t, []uuid.UUID{m1, m2}, change.Groups())
	require.Equal(t, []string{"a", "c"}, f.titles(t, m1))
	require.Equal(t, []string{"b", "x", "y"}, f.titles(t, m2))

	// Without an order the record is appended to the new group.
	_, err = f.agg.Move(f.ctx, aggregates.MoveInput{ID: b, ToGroup: &m1})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c", "b"}, f.titles(t, m1))
	require.Equal(t, []string{"x", "y"}, f.titles(t, m2))

	// Oversized orders clamp when entering another group.
	_, err = f.agg.Move(f.ctx, aggregates.MoveInput{ID: b, ToGroup: &m2, ToOrder: intp(40)})
	require.NoError(t, err)
	require.Equal(t, []string{"x", "y", "b"}, f.titles(t, m2))
}

func TestOrderedGroup_DeleteWriteRunsInsideTx(t *testing.T) {
	f := newLessonFixture(t)
	m := f.module(t, 1)
	a := f.mustInsert(t, m, "A", nil)
	f.mustInsert(t, m, "B", nil)
	quiz := repotest.SeedQuiz(t, f.ctx, f.db, a, "quiz")

	_, err := f.agg.Delete(f.ctx, aggregates.DeleteInput{
		ID: a,
		Write: func(dbc dbctx.Context, group uuid.UUID) error {
			if group != m {
				t.Fatalf("write got group %s, want %s", group, m)
			}
			return dbc.Tx.Where("lesson_id = ?", a).Delete(&types.Quiz{}).Error
		},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"B"}, f.titles(t, m))

	var n int64
	require.NoError(t, f.db.Model(&types.Quiz{}).Where("id = ?", quiz.ID).Count(&n).Error)
	require.Zero(t, n)
}

// The store must agree with an in-memory model after every step of a long
// random sequence of inserts, moves and deletes.
func TestOrderedGroup_RandomSequenceMatchesModel(t *testing.T) {
	f := newLessonFixture(t)
	m := f.module(t, 1)
	rng := rand.New(rand.NewSource(11))

	var model []uuid.UUID
	titleOf := map[uuid.UUID]string{}
	check := func(step int) {
		want := make([]string, len(model))
		for i, id := range model {
			want[i] = titleOf[id]
		}
		got := f.titles(t, m)
		if len(want) == 0 {
			want = []string{}
		}
		require.Equal(t, want, got, "step %d", step)
	}

	for step := 0; step < 60; step++ {
		switch op := rng.Intn(4); {
		case op <= 1 || len(model) == 0:
			var desired *int
			if rng.Intn(3) > 0 {
				desired = intp(rng.Intn(len(model)+3) - 1)
			}
			title := uuid.NewString()[:6]
			id := f.mustInsert(t, m, title, desired)
			titleOf[id] = title
			pos := len(model)
			if desired != nil {
				pos = min(max(*desired, 1), len(model)+1) - 1
			}
			model = append(model[:pos], append([]uuid.UUID{id}, model[pos:]...)...)
		case op == 2:
			i := rng.Intn(len(model))
			to := rng.Intn(len(model)) + 1
			_, err := f.agg.Move(f.ctx, aggregates.MoveInput{ID: model[i], ToOrder: intp(to)})
			require.NoError(t, err, "step %d", step)
			id := model[i]
			model = append(model[:i], model[i+1:]...)
			model = append(model[:to-1], append([]uuid.UUID{id}, model[to-1:]...)...)
		default:
			i := rng.Intn(len(model))
			_, err := f.agg.Delete(f.ctx, aggregates.DeleteInput{ID: model[i]})
			require.NoError(t, err, "step %d", step)
			model = append(model[:i], model[i+1:]...)
		}
		check(step)
	}
}

func TestOrderedGroup_ConcurrentReordersStayDense(t *testing.T) {
	f := newLessonFixture(t)
	m := f.module(t, 1)
	var ids []uuid.UUID
	for i := 0; i < 6; i++ {
		ids = append(ids, f.mustInsert(t, m, uuid.NewString()[:6], nil))
	}

	policy := aggregates.RetryPolicy{MaxAttempts: 10, InitialInterval: time.Millisecond, MaxInterval: 20 * time.Millisecond}
	var wg sync.WaitGroup
	errs := make(chan error, 24)
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < 6; i++ {
				id := ids[rng.Intn(len(ids))]
				to := rng.Intn(len(ids)) + 1
				_, err := aggregates.RetryConflicts(f.ctx, policy, f.hooks, "test.move", func() (domainagg.OrderChange, error) {
					return f.agg.Move(f.ctx, aggregates.MoveInput{ID: id, ToOrder: intp(to)})
				})
				if err != nil {
					errs <- err
				}
			}
		}(int64(w + 1))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent move: %v", err)
	}

	items, err := f.lessons.GroupItems(f.ctx, nil, m)
	require.NoError(t, err)
	require.Len(t, items, len(ids))
	require.True(t, ordering.IsDense(items), "orders: %+v", items)
}

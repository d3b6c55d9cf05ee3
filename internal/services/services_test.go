package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/aggregates"
	"github.com/yungbote/lms-backend/internal/data/query"
	"github.com/yungbote/lms-backend/internal/data/repos"
	"github.com/yungbote/lms-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lms-backend/internal/domain"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/domain/learning"
)

type recordedEvents struct {
	mu      sync.Mutex
	changes []domainagg.OrderChange
	fail    error
}

func (r *recordedEvents) Publish(_ context.Context, c domainagg.OrderChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.changes = append(r.changes, c)
	return nil
}

func (r *recordedEvents) ops() []domainagg.OrderOp {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domainagg.OrderOp, len(r.changes))
	for i, c := range r.changes {
		out[i] = c.Op
	}
	return out
}

type fixture struct {
	ctx        context.Context
	db         *gorm.DB
	events     *recordedEvents
	categories CategoryService
	courses    CourseService
	modules    ModuleService
	lessons    LessonService
	quizzes    QuizService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	resolver := query.NewResolver()
	events := &recordedEvents{}
	deps := OrderingDeps{
		Retry:  aggregates.RetryPolicy{MaxAttempts: 5, InitialInterval: time.Millisecond, MaxInterval: 10 * time.Millisecond},
		Events: events,
	}
	lessonRepo := repos.NewLessonRepo(db, log)
	moduleRepo := repos.NewCourseModuleRepo(db, log)
	base := aggregates.BaseDeps{DB: db, Log: log}
	lessonAgg := aggregates.NewOrderedGroupAggregate(base, lessonRepo, aggregates.OrderedGroupConfig{Resource: "lesson", ParentResource: "module", VerifyDensity: true})
	moduleAgg := aggregates.NewOrderedGroupAggregate(base, moduleRepo, aggregates.OrderedGroupConfig{Resource: "module", ParentResource: "course", VerifyDensity: true})

	return &fixture{
		ctx:        context.Background(),
		db:         db,
		events:     events,
		categories: NewCategoryService(db, log, repos.NewCategoryRepo(db, log), resolver),
		courses:    NewCourseService(db, log, repos.NewCourseRepo(db, log), resolver),
		modules:    NewModuleService(db, log, moduleRepo, lessonRepo, moduleAgg, resolver, deps),
		lessons:    NewLessonService(db, log, lessonRepo, lessonAgg, resolver, deps),
		quizzes:    NewQuizService(db, log, repos.NewQuizRepo(db, log), resolver),
	}
}

func (f *fixture) course(t *testing.T) *types.Course {
	t.Helper()
	cat, err := f.categories.Create(f.ctx, &types.Category{Name: "Cat " + uuid.NewString()[:8]})
	require.NoError(t, err)
	c, err := f.courses.Create(f.ctx, &types.Course{
		Title:        "Go " + uuid.NewString()[:8],
		Description:  "learn go",
		CategoryID:   cat.ID,
		InstructorID: uuid.New(),
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) module(t *testing.T, courseID uuid.UUID, title string) *types.CourseModule {
	t.Helper()
	m, err := f.modules.Create(f.ctx, &types.CourseModule{CourseID: courseID, Title: title})
	require.NoError(t, err)
	return m
}

func (f *fixture) lesson(t *testing.T, moduleID uuid.UUID, title string, desired *int) *types.Lesson {
	t.Helper()
	l, err := f.lessons.CreateAt(f.ctx, &types.Lesson{ModuleID: moduleID, Title: title}, desired)
	require.NoError(t, err)
	return l
}

func (f *fixture) lessonTitles(t *testing.T, moduleID uuid.UUID) []string {
	t.Helper()
	res, err := f.lessons.ListByGroup(f.ctx, moduleID, ListRequest{Page: query.PageOptions{Limit: 100}})
	require.NoError(t, err)
	out := make([]string, len(res.Data))
	for i, l := range res.Data {
		require.Equal(t, i+1, l.Order, "lesson %s", l.Title)
		out[i] = l.Title
	}
	return out
}

func patchOf(t *testing.T, v map[string]any) Patch {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	p, err := ParsePatch("test", raw)
	require.NoError(t, err)
	return p
}

func intp(v int) *int { return &v }

func TestSlugify(t *testing.T) {
	require.Equal(t, "intro-to-go-1-22", Slugify("  Intro to Go 1.22! "))
	require.Equal(t, "", Slugify("!!!"))
}

func TestCourseCreateDerivesUniqueSlug(t *testing.T) {
	f := newFixture(t)
	cat, err := f.categories.Create(f.ctx, &types.Category{Name: "Data " + uuid.NewString()[:6]})
	require.NoError(t, err)
	require.NotEmpty(t, cat.Slug)

	title := "Distributed Systems " + uuid.NewString()[:6]
	first, err := f.courses.Create(f.ctx, &types.Course{Title: title, Description: "d", CategoryID: cat.ID, InstructorID: uuid.New()})
	require.NoError(t, err)
	require.Equal(t, Slugify(title), first.Slug)
	require.Equal(t, learning.CourseStatusDraft, first.Status)

	second, err := f.courses.Create(f.ctx, &types.Course{Title: title, Description: "d", CategoryID: cat.ID, InstructorID: uuid.New()})
	require.NoError(t, err)
	require.NotEqual(t, first.Slug, second.Slug)
	require.Contains(t, second.Slug, Slugify(title)+"-")
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.courses.Create(f.ctx, &types.Course{Title: "No category", Description: "d"})
	require.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)
	require.Contains(t, err.Error(), "CategoryID")

	_, err = f.lessons.Create(f.ctx, &types.Lesson{Title: "orphan"})
	require.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)
}

func TestCRUDRoundTrip(t *testing.T) {
	f := newFixture(t)
	c := f.course(t)

	got, err := f.courses.Get(f.ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Category)

	updated, err := f.courses.Update(f.ctx, c.ID, patchOf(t, map[string]any{
		"title":        "Renamed",
		"is_published": true,
		"id":           uuid.NewString(),
	}))
	require.NoError(t, err)
	require.Equal(t, c.ID, updated.ID)
	require.Equal(t, "Renamed", updated.Title)
	require.True(t, updated.IsPublished)
	require.Equal(t, c.Description, updated.Description)

	_, err = f.courses.Update(f.ctx, c.ID, patchOf(t, map[string]any{"level": "wizard"}))
	require.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)

	require.NoError(t, f.courses.Delete(f.ctx, c.ID))
	_, err = f.courses.Get(f.ctx, c.ID)
	require.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "got %v", err)
	err = f.courses.Delete(f.ctx, c.ID)
	require.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "got %v", err)
}

func TestListPaginatesAndFilters(t *testing.T) {
	f := newFixture(t)
	c := f.course(t)
	m := f.module(t, c.ID, "m")
	for i := 0; i < 7; i++ {
		f.lesson(t, m.ID, "lesson-"+string(rune('a'+i)), nil)
	}
	f.lesson(t, m.ID, "Special Topic", nil)

	values := url.Values{"module_id": {m.ID.String()}, "page": {"2"}, "limit": {"5"}, "sortBy": {"order"}, "sortOrder": {"asc"}}
	res, err := f.lessons.List(f.ctx, ParseListRequest(values, f.lessons.Spec()))
	require.NoError(t, err)
	require.Equal(t, query.Meta{Page: 2, Limit: 5, Total: 8}, res.Meta)
	require.Len(t, res.Data, 3)
	require.Equal(t, 6, res.Data[0].Order)

	values = url.Values{"module_id": {m.ID.String()}, "searchTerm": {"special"}}
	res, err = f.lessons.List(f.ctx, ParseListRequest(values, f.lessons.Spec()))
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Meta.Total)
	require.Equal(t, "Special Topic", res.Data[0].Title)

	values = url.Values{"module_id": {"not-a-uuid"}}
	res, err = f.lessons.List(f.ctx, ParseListRequest(values, f.lessons.Spec()))
	require.NoError(t, err)
	require.Empty(t, res.Data)
	require.NotNil(t, res.Data)
}

func TestListByGroupSearchStaysInGroup(t *testing.T) {
	f := newFixture(t)
	c := f.course(t)
	m1 := f.module(t, c.ID, "m1")
	m2 := f.module(t, c.ID, "m2")
	f.lesson(t, m1.ID, "Channels", nil)
	f.lesson(t, m2.ID, "Channels deep dive", nil)
	f.lesson(t, m2.ID, "Select", nil)

	req := ParseListRequest(url.Values{"searchTerm": {"channels"}}, f.lessons.Spec())
	res, err := f.lessons.ListByGroup(f.ctx, m1.ID, req)
	require.NoError(t, err)
	require.EqualValues(t, 1, res.Meta.Total)
	require.Equal(t, "Channels", res.Data[0].Title)

	req = ParseListRequest(url.Values{"searchTerm": {"select"}}, f.lessons.Spec())
	res, err = f.lessons.ListByGroup(f.ctx, m1.ID, req)
	require.NoError(t, err)
	require.EqualValues(t, 0, res.Meta.Total)
	require.Empty(t, res.Data)
}

func TestLessonOrderingThroughService(t *testing.T) {
	f := newFixture(t)
	c := f.course(t)
	m := f.module(t, c.ID, "m")
	a := f.lesson(t, m.ID, "A", nil)
	f.lesson(t, m.ID, "B", nil)
	f.lesson(t, m.ID, "C", nil)
	d := f.lesson(t, m.ID, "D", intp(1))
	require.Equal(t, 1, d.Order)
	require.NotNil(t, d.Module)
	require.Equal(t, []string{"D", "A", "B", "C"}, f.lessonTitles(t, m.ID))

	moved, err := f.lessons.Reorder(f.ctx, a.ID, 4)
	require.NoError(t, err)
	require.Equal(t, 4, moved.Order)
	require.Equal(t, []string{"D", "B", "C", "A"}, f.lessonTitles(t, m.ID))

	_, err = f.lessons.Reorder(f.ctx, a.ID, 9)
	require.True(t, domainagg.IsCode(err, domainagg.CodeOutOfRange), "got %v", err)

	// Order and field changes commit together.
	upd, err := f.lessons.Update(f.ctx, a.ID, patchOf(t, map[string]any{"order": 1, "title": "A2"}))
	require.NoError(t, err)
	require.Equal(t, 1, upd.Order)
	require.Equal(t, []string{"A2", "D", "B", "C"}, f.lessonTitles(t, m.ID))

	// A failing field update rolls the move back.
	_, err = f.lessons.Update(f.ctx, a.ID, patchOf(t, map[string]any{"order": 4, "duration_minutes": -5}))
	require.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)
	require.Equal(t, []string{"A2", "D", "B", "C"}, f.lessonTitles(t, m.ID))

	require.NoError(t, f.lessons.Delete(f.ctx, d.ID))
	require.Equal(t, []string{"A2", "B", "C"}, f.lessonTitles(t, m.ID))

	require.Equal(t, []domainagg.OrderOp{
		domainagg.OrderOpInsert, // module
		domainagg.OrderOpInsert, domainagg.OrderOpInsert, domainagg.OrderOpInsert, domainagg.OrderOpInsert,
		domainagg.OrderOpMove, domainagg.OrderOpMove,
		domainagg.OrderOpDelete,
	}, f.events.ops())
}

func TestLessonMovesAcrossModules(t *testing.T) {
	f := newFixture(t)
	c := f.course(t)
	m1 := f.module(t, c.ID, "m1")
	m2 := f.module(t, c.ID, "m2")
	f.lesson(t, m1.ID, "a", nil)
	b := f.lesson(t, m1.ID, "b", nil)
	f.lesson(t, m2.ID, "x", nil)

	moved, err := f.lessons.Update(f.ctx, b.ID, patchOf(t, map[string]any{"module_id": m2.ID.String()}))
	require.NoError(t, err)
	require.Equal(t, m2.ID, moved.ModuleID)
	require.Equal(t, 2, moved.Order)
	require.Equal(t, []string{"a"}, f.lessonTitles(t, m1.ID))
	require.Equal(t, []string{"x", "b"}, f.lessonTitles(t, m2.ID))

	_, err = f.lessons.Update(f.ctx, b.ID, patchOf(t, map[string]any{"module_id": uuid.NewString()}))
	require.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "got %v", err)

	_, err = f.lessons.Update(f.ctx, b.ID, patchOf(t, map[string]any{"order": "first"}))
	require.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)
}

func TestModuleDeleteCascadesAndCompacts(t *testing.T) {
	f := newFixture(t)
	c := f.course(t)
	m1 := f.module(t, c.ID, "m1")
	m2 := f.module(t, c.ID, "m2")
	m3 := f.module(t, c.ID, "m3")
	f.lesson(t, m2.ID, "x", nil)
	f.lesson(t, m2.ID, "y", nil)

	require.NoError(t, f.modules.Delete(f.ctx, m2.ID))

	var lessons int64
	require.NoError(t, f.db.Model(&types.Lesson{}).Where("module_id = ?", m2.ID).Count(&lessons).Error)
	require.Zero(t, lessons)

	course, err := f.courses.Get(f.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, course.Modules, 2)
	require.Equal(t, m1.ID, course.Modules[0].ID)
	require.Equal(t, 1, course.Modules[0].Order)
	require.Equal(t, m3.ID, course.Modules[1].ID)
	require.Equal(t, 2, course.Modules[1].Order)
}

type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (c *callLog) add(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, name)
}

type lockTrackingLessons struct {
	repos.LessonRepo
	log    *callLog
	locked []uuid.UUID
}

func (r *lockTrackingLessons) LockGroups(ctx context.Context, tx *gorm.DB, groups ...uuid.UUID) ([]uuid.UUID, error) {
	r.log.add("lock")
	r.locked = append(r.locked, groups...)
	return r.LessonRepo.LockGroups(ctx, tx, groups...)
}

func (r *lockTrackingLessons) DeleteByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) (int64, error) {
	r.log.add("delete")
	return r.LessonRepo.DeleteByModuleIDs(ctx, tx, moduleIDs)
}

func TestModuleDeleteLocksModuleBeforeRemovingLessons(t *testing.T) {
	f := newFixture(t)
	c := f.course(t)
	m := f.module(t, c.ID, "m")
	f.lesson(t, m.ID, "x", nil)

	log := testutil.Logger(t)
	calls := &callLog{}
	lessons := &lockTrackingLessons{LessonRepo: repos.NewLessonRepo(f.db, log), log: calls}
	moduleRepo := repos.NewCourseModuleRepo(f.db, log)
	agg := aggregates.NewOrderedGroupAggregate(aggregates.BaseDeps{DB: f.db, Log: log}, moduleRepo,
		aggregates.OrderedGroupConfig{Resource: "module", ParentResource: "course"})
	svc := NewModuleService(f.db, log, moduleRepo, lessons, agg, query.NewResolver(), OrderingDeps{Retry: aggregates.DefaultRetryPolicy})

	require.NoError(t, svc.Delete(f.ctx, m.ID))
	require.Equal(t, []string{"lock", "delete"}, calls.calls)
	require.Equal(t, []uuid.UUID{m.ID}, lessons.locked)

	var left int64
	require.NoError(t, f.db.Model(&types.Lesson{}).Where("module_id = ?", m.ID).Count(&left).Error)
	require.Zero(t, left)
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	f := newFixture(t)
	c := f.course(t)
	f.events.fail = errors.New("redis down")
	m, err := f.modules.Create(f.ctx, &types.CourseModule{CourseID: c.ID, Title: "m"})
	require.NoError(t, err)
	require.Equal(t, 1, m.Order)
}

func TestQuizGetPreloadsQuestions(t *testing.T) {
	f := newFixture(t)
	c := f.course(t)
	m := f.module(t, c.ID, "m")
	l := f.lesson(t, m.ID, "l", nil)
	q, err := f.quizzes.Create(f.ctx, &types.Quiz{LessonID: l.ID, Title: "quiz", PassingScore: 60})
	require.NoError(t, err)
	question := testutil.SeedQuizQuestion(t, f.ctx, f.db, q.ID, "2+2?")
	require.NoError(t, f.db.Create(&types.QuizOption{QuestionID: question.ID, Text: "4", IsCorrect: true}).Error)

	got, err := f.quizzes.Get(f.ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, got.Questions, 1)
	require.Len(t, got.Questions[0].Options, 1)
	require.True(t, got.Questions[0].Options[0].IsCorrect)
}

func TestListingsLoadAssociations(t *testing.T) {
	f := newFixture(t)
	c := f.course(t)
	m := f.module(t, c.ID, "m")
	l := f.lesson(t, m.ID, "second", nil)
	f.lesson(t, m.ID, "first", intp(1))
	q, err := f.quizzes.Create(f.ctx, &types.Quiz{LessonID: l.ID, Title: "quiz", PassingScore: 60})
	require.NoError(t, err)
	testutil.SeedQuizQuestion(t, f.ctx, f.db, q.ID, "2+2?")

	lessons, err := f.lessons.ListByGroup(f.ctx, m.ID, ListRequest{})
	require.NoError(t, err)
	require.Len(t, lessons.Data, 2)
	for _, l := range lessons.Data {
		require.NotNil(t, l.Module)
		require.Equal(t, m.ID, l.Module.ID)
	}

	modules, err := f.modules.ListByGroup(f.ctx, c.ID, ListRequest{})
	require.NoError(t, err)
	require.Len(t, modules.Data, 1)
	require.NotNil(t, modules.Data[0].Course)
	require.Len(t, modules.Data[0].Lessons, 2)
	require.Equal(t, "first", modules.Data[0].Lessons[0].Title)

	courses, err := f.courses.List(f.ctx, ParseListRequest(url.Values{"category_id": {c.CategoryID.String()}}, f.courses.Spec()))
	require.NoError(t, err)
	require.Len(t, courses.Data, 1)
	require.NotNil(t, courses.Data[0].Category)

	quizzes, err := f.quizzes.List(f.ctx, ListRequest{})
	require.NoError(t, err)
	require.Len(t, quizzes.Data, 1)
	require.Len(t, quizzes.Data[0].Questions, 1)
}

func TestParsePatch(t *testing.T) {
	_, err := ParsePatch("op", []byte(`[1,2]`))
	require.True(t, domainagg.IsCode(err, domainagg.CodeValidation))

	p, err := ParsePatch("op", []byte(`{"title":"x","id":"y","module":{},"order":2}`))
	require.NoError(t, err)
	cols := p.Columns(func(c string) bool { return c != "module" })
	require.Equal(t, []string{"order", "title"}, cols)
	require.False(t, p.Without("order").Has("order"))
	require.True(t, p.Has("order"))
}

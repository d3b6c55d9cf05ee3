package table

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/lms-backend/internal/data/ordering"
	"github.com/yungbote/lms-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lms-backend/internal/domain"
	"gorm.io/gorm"
)

func newLessonTable(t *testing.T, db *gorm.DB) *Ordered[types.Lesson] {
	return NewOrdered[types.Lesson](db, testutil.Logger(t), "LessonTable", "module_id", "course_module")
}

func TestOrderedShiftOrders(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := newLessonTable(t, db)

	cat := testutil.SeedCategory(t, ctx, tx, "cat")
	course := testutil.SeedCourse(t, ctx, tx, cat.ID, "Go")
	mod := testutil.SeedModule(t, ctx, tx, course.ID, 1)
	other := testutil.SeedModule(t, ctx, tx, course.ID, 2)
	ls := testutil.SeedLessons(t, ctx, tx, mod.ID, "A", "B", "C", "D")
	outsider := testutil.SeedLesson(t, ctx, tx, other.ID, "X", 2)

	n, err := repo.ShiftOrders(ctx, tx, ordering.Shift{Group: mod.ID, From: 2, To: 3, Delta: 1, Exclude: ls[2].ID})
	if err != nil || n != 1 {
		t.Fatalf("ShiftOrders bounded: n=%d err=%v", n, err)
	}
	n, err = repo.ShiftOrders(ctx, tx, ordering.Shift{Group: mod.ID, From: 4, Delta: -1})
	if err != nil || n != 1 {
		t.Fatalf("ShiftOrders unbounded: n=%d err=%v", n, err)
	}

	orders := testutil.LessonOrders(t, ctx, tx, mod.ID)
	want := map[uuid.UUID]int{ls[0].ID: 1, ls[1].ID: 3, ls[2].ID: 3, ls[3].ID: 3}
	for id, o := range want {
		if orders[id] != o {
			t.Fatalf("order of %s: want %d got %d (all=%v)", id, o, orders[id], orders)
		}
	}
	if _, o, _ := repo.Position(ctx, tx, outsider.ID); o != 2 {
		t.Fatalf("shift leaked into another group: order=%d", o)
	}
}

func TestOrderedPositionAndGroups(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := newLessonTable(t, db)

	cat := testutil.SeedCategory(t, ctx, tx, "cat")
	course := testutil.SeedCourse(t, ctx, tx, cat.ID, "Go")
	mod := testutil.SeedModule(t, ctx, tx, course.ID, 1)
	ls := testutil.SeedLessons(t, ctx, tx, mod.ID, "A", "B")

	g, o, err := repo.Position(ctx, tx, ls[1].ID)
	if err != nil || g != mod.ID || o != 2 {
		t.Fatalf("Position: group=%s order=%d err=%v", g, o, err)
	}
	if _, _, err := repo.Position(ctx, tx, uuid.New()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Position missing: %v", err)
	}

	if n, err := repo.CountInGroup(ctx, tx, mod.ID); err != nil || n != 2 {
		t.Fatalf("CountInGroup: n=%d err=%v", n, err)
	}

	found, err := repo.LockGroups(ctx, tx, mod.ID, uuid.New())
	if err != nil || len(found) != 1 || found[0] != mod.ID {
		t.Fatalf("LockGroups: found=%v err=%v", found, err)
	}

	if n, err := repo.SetPosition(ctx, tx, ls[0].ID, mod.ID, 7); err != nil || n != 1 {
		t.Fatalf("SetPosition: n=%d err=%v", n, err)
	}
	items, err := repo.GroupItems(ctx, tx, mod.ID)
	if err != nil || len(items) != 2 || items[0].ID != ls[1].ID || items[1].Order != 7 {
		t.Fatalf("GroupItems: %+v err=%v", items, err)
	}
	if ordering.IsDense(items) {
		t.Fatalf("group with orders {2,7} must not be dense")
	}

	groups, err := repo.Groups(ctx, tx)
	if err != nil {
		t.Fatalf("Groups: %v", err)
	}
	seen := false
	for _, g := range groups {
		seen = seen || g == mod.ID
	}
	if !seen {
		t.Fatalf("Groups: %v missing %s", groups, mod.ID)
	}
}

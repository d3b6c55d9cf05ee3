package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/lms-backend/internal/app"
	"github.com/yungbote/lms-backend/internal/seed"
)

func main() {
	path := flag.String("file", "outline.yaml", "course outline to load")
	flag.Parse()

	f, err := os.Open(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open outline: %v\n", err)
		os.Exit(1)
	}
	outline, err := seed.ParseOutline(f)
	_ = f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	s := &seed.Seeder{
		Log:        a.Log.With("cmd", "seed"),
		Categories: a.Services.Category,
		Courses:    a.Services.Course,
		Modules:    a.Services.Module,
		Lessons:    a.Services.Lesson,
	}
	sum, err := s.Apply(context.Background(), outline)
	if err != nil {
		a.Log.Error("seed failed", "error", err, "courses", sum.Courses, "modules", sum.Modules, "lessons", sum.Lessons)
		a.Close()
		os.Exit(1)
	}
	a.Log.Info("seed complete",
		"category_id", sum.CategoryID,
		"courses", sum.Courses,
		"modules", sum.Modules,
		"lessons", sum.Lessons,
	)
}

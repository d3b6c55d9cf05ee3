package assessment

import (
	"github.com/yungbote/lms-backend/internal/data/repos/table"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type AssignmentRepo interface {
	table.Table[types.Assignment]
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	return table.New[types.Assignment](db, baseLog, "AssignmentRepo")
}

type SubmissionRepo interface {
	table.Table[types.Submission]
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	return table.New[types.Submission](db, baseLog, "SubmissionRepo")
}

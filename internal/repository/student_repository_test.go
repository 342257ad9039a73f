package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentListByParentCarriesSchool(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	parentID := "p-1"
	rows := sqlmock.NewRows([]string{"id", "student_number", "full_name", "class_id", "parent_id", "birth_date", "gender", "active", "created_at", "updated_at", "class_name", "school_id"}).
		AddRow("st-1", "S-1", "Alice", "class-1", parentID, now, "female", true, now, now, "7A", "school-1").
		AddRow("st-2", "S-2", "Bob", "class-2", parentID, now, "male", true, now, now, "7B", "school-1")
	mock.ExpectQuery(regexp.QuoteMeta("JOIN classes c ON c.id = s.class_id")).
		WithArgs(parentID).
		WillReturnRows(rows)

	children, err := repo.ListByParent(context.Background(), parentID)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "Alice", children[0].FullName)
	assert.Equal(t, "7A", children[0].ClassName)
	assert.Equal(t, "school-1", children[0].SchoolID)
	assert.Equal(t, "school-1", children[1].SchoolID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentListByParentEmpty(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.parent_id = $1")).
		WithArgs("p-none").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_number", "full_name", "class_id", "parent_id", "birth_date", "gender", "active", "created_at", "updated_at", "class_name", "school_id"}))

	children, err := repo.ListByParent(context.Background(), "p-none")
	require.NoError(t, err)
	assert.Empty(t, children)
	assert.NoError(t, mock.ExpectationsWereMet())
}

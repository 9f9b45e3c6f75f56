package postgres

import (
	"context"
	"database/sql"
	"testing"

	"openmic/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

var roleFields = []string{"id", "name", "description", "permissions", "is_active", "created_at", "updated_at"}

func TestRoleRepository_ListByUserID(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INNER JOIN user_roles ur ON ur.role_id = r.id`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(roleFields).
			AddRow("role-1", "organizer", "Runs events", "{events.create,timeslots.manage}", true, testTime, testTime).
			AddRow("role-2", "performer", "", "{}", false, testTime, testTime))

	roles, err := NewRoleRepository(db).ListByUserID(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, roles, 2)
	require.Equal(t, []domain.Permission{domain.PermEventsCreate, domain.PermTimeslotsManage}, roles[0].Permissions)
	require.Empty(t, roles[1].Permissions)
	require.False(t, roles[1].IsActive)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepository_GetByName(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		mock  func(mock sqlmock.Sqlmock)
		errIs error
	}{
		{
			name: "found",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM roles WHERE name = \$1`).
					WithArgs("performer").
					WillReturnRows(sqlmock.NewRows(roleFields).
						AddRow("role-2", "performer", "", "{events.view}", true, testTime, testTime))
			},
		},
		{
			name: "missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM roles WHERE name = \$1`).WillReturnError(sql.ErrNoRows)
			},
			errIs: domain.ErrNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			role, err := NewRoleRepository(db).GetByName(ctx, "performer")
			if tt.errIs != nil {
				require.ErrorIs(t, err, tt.errIs)
			} else {
				require.NoError(t, err)
				require.Equal(t, "role-2", role.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRoleRepository_Create_duplicateName(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO roles`).
		WithArgs("host", "", pq.Array([]string{"events.view"}), true, testTime, testTime).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "roles_name_key"})

	err = NewRoleRepository(db).Create(ctx, &domain.Role{
		Name:        "host",
		Permissions: []domain.Permission{domain.PermEventsView},
		IsActive:    true,
		CreatedAt:   testTime,
		UpdatedAt:   testTime,
	})
	require.ErrorIs(t, err, domain.ErrDuplicateRoleName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleRepository_Delete_notFound(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM roles WHERE id = \$1`).
		WithArgs("nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewRoleRepository(db).Delete(ctx, "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

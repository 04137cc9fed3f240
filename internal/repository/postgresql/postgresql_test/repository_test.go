package postgresql_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/training-records-backend/internal/domain/employee"
	"github.com/cmlabs-hris/training-records-backend/internal/domain/training"
	"github.com/cmlabs-hris/training-records-backend/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func date(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func createEmployeeWithProfile(t *testing.T, ctx context.Context, repo employee.EmployeeRepository, username string) employee.Employee {
	t.Helper()

	emp, err := repo.Create(ctx, employee.Employee{
		FirstName:  "Ana",
		LastName:   "Reyes",
		MiddleName: "Santos",
		Position:   "Engineer",
	})
	require.NoError(t, err)

	err = repo.CreateProfile(ctx, employee.Profile{
		EmployeeID:   emp.ID,
		Username:     username,
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	return emp
}

func TestEmployeeRepository_CreateAndRead(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(testDB)

	emp := createEmployeeWithProfile(t, ctx, repo, "ana")
	assert.Positive(t, emp.ID)

	got, err := repo.GetByID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Equal(t, emp, got)

	detail, err := repo.GetDetail(ctx, emp.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Username)
	assert.Equal(t, "ana", *detail.Username)
	assert.Nil(t, detail.PictureFilename)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	creds, err := repo.GetCredentialsByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, emp.ID, creds.EmployeeID)
	assert.Equal(t, "hash", creds.PasswordHash)
}

func TestEmployeeRepository_NotFound(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(testDB)

	_, err := repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = repo.GetDetail(ctx, 999)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = repo.GetCredentialsByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, 999), employee.ErrEmployeeNotFound)
	assert.ErrorIs(t, repo.UpdateContactDetails(ctx, 999, employee.ContactDetails{}), employee.ErrEmployeeNotFound)

	_, err = repo.UpdatePicture(ctx, 999, nil)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestEmployeeRepository_ProfileConstraints(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(testDB)

	createEmployeeWithProfile(t, ctx, repo, "ana")

	other, err := repo.Create(ctx, employee.Employee{FirstName: "Ben", LastName: "Cruz", MiddleName: "", Position: "QA"})
	require.NoError(t, err)

	err = repo.CreateProfile(ctx, employee.Profile{EmployeeID: other.ID, Username: "ana", PasswordHash: "x"})
	assert.ErrorIs(t, err, employee.ErrUsernameExists)

	err = repo.CreateProfile(ctx, employee.Profile{EmployeeID: 999, Username: "ghost", PasswordHash: "x"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestEmployeeRepository_UpdateContactDetailsAndPicture(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(testDB)

	emp := createEmployeeWithProfile(t, ctx, repo, "ana")

	birthday := date("1990-04-12")
	age := 35
	err := repo.UpdateContactDetails(ctx, emp.ID, employee.ContactDetails{
		Birthday:     &birthday,
		Office:       strPtr("Manila"),
		Email:        strPtr("ana@example.com"),
		Age:          &age,
		MobileNumber: strPtr("09171234567"),
	})
	require.NoError(t, err)

	detail, err := repo.GetDetail(ctx, emp.ID)
	require.NoError(t, err)
	require.NotNil(t, detail.Birthday)
	assert.True(t, birthday.Equal(*detail.Birthday))
	assert.Equal(t, "Manila", *detail.Office)
	assert.Nil(t, detail.Religion)
	assert.Equal(t, 35, *detail.Age)

	previous, err := repo.UpdatePicture(ctx, emp.ID, strPtr("first.png"))
	require.NoError(t, err)
	assert.Nil(t, previous)

	previous, err = repo.UpdatePicture(ctx, emp.ID, strPtr("second.png"))
	require.NoError(t, err)
	require.NotNil(t, previous)
	assert.Equal(t, "first.png", *previous)

	previous, err = repo.UpdatePicture(ctx, emp.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "second.png", *previous)
}

func TestTrainingRepository(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	employees := postgresql.NewEmployeeRepository(testDB)
	repo := postgresql.NewTrainingRepository(testDB)

	emp := createEmployeeWithProfile(t, ctx, employees, "ana")

	created, err := repo.Create(ctx, training.Training{
		Name:          "Go Fundamentals",
		Description:   training.StatusCompleted,
		TrainerName:   "R. Pike",
		DateAttended:  date("2024-01-10"),
		DateCompleted: date("2024-01-12"),
		EmployeeID:    emp.ID,
		ImgCert:       strPtr("cert.pdf"),
	})
	require.NoError(t, err)
	assert.Positive(t, created.ID)
	assert.Equal(t, "cert.pdf", *created.ImgCert)

	_, err = repo.Create(ctx, training.Training{
		Name:          "SQL",
		Description:   training.StatusParticipation,
		TrainerName:   "E. Codd",
		DateAttended:  date("2024-02-01"),
		DateCompleted: date("2024-02-01"),
		EmployeeID:    emp.ID,
	})
	require.NoError(t, err)

	_, err = repo.Create(ctx, training.Training{
		Name:          "Orphan",
		Description:   training.StatusCompleted,
		TrainerName:   "Nobody",
		DateAttended:  date("2024-02-01"),
		DateCompleted: date("2024-02-01"),
		EmployeeID:    999,
	})
	assert.ErrorIs(t, err, training.ErrEmployeeNotFound)

	own, err := repo.ListByEmployeeID(ctx, emp.ID)
	require.NoError(t, err)
	require.Len(t, own, 2)
	assert.Equal(t, "Go Fundamentals", own[0].Name)
	assert.Nil(t, own[1].ImgCert)

	all, err := repo.ListWithEmployee(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ana", all[0].FirstName)

	// the foreign key keeps the employee while training references it
	err = employees.Delete(ctx, emp.ID)
	require.Error(t, err)
	assert.False(t, errors.Is(err, employee.ErrEmployeeNotFound))

	removed, err := repo.DeleteByEmployeeID(ctx, emp.ID)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	require.NoError(t, employees.Delete(ctx, emp.ID))

	_, err = employees.GetCredentialsByUsername(ctx, "ana")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestTransactor_RollsBackOnError(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	repo := postgresql.NewEmployeeRepository(testDB)
	tx := postgresql.NewTransactor(testDB)

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := repo.Create(ctx, employee.Employee{FirstName: "Tmp", LastName: "Tmp", Position: "Tmp"})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := repo.Create(ctx, employee.Employee{FirstName: "Kept", LastName: "Row", Position: "Ops"})
		if err != nil {
			return err
		}
		return repo.CreateProfile(ctx, employee.Profile{EmployeeID: emp.ID, Username: "kept", PasswordHash: "x"})
	})
	require.NoError(t, err)

	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

package services

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/atelierworks/atelier-backend/apperr"
	"github.com/atelierworks/atelier-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func fixedYearAllocator(db *gorm.DB, year int) *SequenceAllocator {
	a := NewSequenceAllocator(db)
	a.now = func() time.Time { return time.Date(year, time.June, 1, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestNextStartsAtOne(t *testing.T) {
	db := newTestDB(t)
	a := fixedYearAllocator(db, 2025)
	p := newTestPrincipal(t, db)

	number, err := a.Next(p.TenantID, SequenceProduction)
	require.NoError(t, err)
	assert.Equal(t, "PR001/2025", number)

	number, err = a.Next(p.TenantID, SequenceClient)
	require.NoError(t, err)
	assert.Equal(t, "CL0001", number)

	number, err = a.Next(p.TenantID, SequenceEmployee)
	require.NoError(t, err)
	assert.Equal(t, "EMP001", number)
}

func TestNextIncrementsFromLatestRow(t *testing.T) {
	db := newTestDB(t)
	a := fixedYearAllocator(db, 2025)
	p := newTestPrincipal(t, db)

	require.NoError(t, db.Create(&models.Project{
		TenantID: p.TenantID, Number: "PR001/2025", Name: "one", State: models.StateProduction,
	}).Error)

	number, err := a.Next(p.TenantID, SequenceProduction)
	require.NoError(t, err)
	assert.Equal(t, "PR002/2025", number)
}

func TestNextKindsAreIndependent(t *testing.T) {
	db := newTestDB(t)
	a := fixedYearAllocator(db, 2025)
	p := newTestPrincipal(t, db)

	require.NoError(t, db.Create(&models.Project{
		TenantID: p.TenantID, Number: "PR005/2025", Name: "prod", State: models.StateProduction,
	}).Error)

	// the pipeline counter does not see production rows
	number, err := a.Next(p.TenantID, SequencePipeline)
	require.NoError(t, err)
	assert.Equal(t, "PL001/2025", number)
}

func TestNextTenantsAreIndependent(t *testing.T) {
	db := newTestDB(t)
	a := fixedYearAllocator(db, 2025)
	p := newTestPrincipal(t, db)
	other := newTestPrincipal(t, db)

	require.NoError(t, db.Create(&models.Client{TenantID: other.TenantID, Number: "CL0042", Name: "theirs"}).Error)

	number, err := a.Next(p.TenantID, SequenceClient)
	require.NoError(t, err)
	assert.Equal(t, "CL0001", number)
}

func TestNextSeesSoftDeletedRows(t *testing.T) {
	db := newTestDB(t)
	a := fixedYearAllocator(db, 2025)
	p := newTestPrincipal(t, db)

	client := models.Client{TenantID: p.TenantID, Number: "CL0001", Name: "gone"}
	require.NoError(t, db.Create(&client).Error)
	require.NoError(t, db.Delete(&client).Error)

	// the deleted row still occupies CL0001 in the unique index
	number, err := a.Next(p.TenantID, SequenceClient)
	require.NoError(t, err)
	assert.Equal(t, "CL0002", number)
}

func TestNextRejectsUnknownKind(t *testing.T) {
	db := newTestDB(t)
	a := fixedYearAllocator(db, 2025)
	p := newTestPrincipal(t, db)

	_, err := a.Next(p.TenantID, SequenceKind("invoice"))
	assert.Equal(t, apperr.CodeInvalid, apperr.CodeOf(err))
}

func TestAllocateRetriesOnDuplicate(t *testing.T) {
	db := newTestDB(t)
	a := fixedYearAllocator(db, 2025)
	p := newTestPrincipal(t, db)

	attempts := 0
	number, err := a.Allocate(p.TenantID, SequenceClient, func(number string) error {
		attempts++
		if attempts == 1 {
			// simulate a concurrent allocator winning the first round
			return fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)
		}
		return db.Create(&models.Client{TenantID: p.TenantID, Number: number, Name: "ok"}).Error
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, "CL0001", number)
}

func TestAllocateGivesUpAfterMaxAttempts(t *testing.T) {
	db := newTestDB(t)
	a := fixedYearAllocator(db, 2025)
	p := newTestPrincipal(t, db)

	attempts := 0
	_, err := a.Allocate(p.TenantID, SequenceClient, func(string) error {
		attempts++
		return gorm.ErrDuplicatedKey
	})
	assert.Equal(t, apperr.CodeExhaustedRetries, apperr.CodeOf(err))
	assert.Equal(t, maxAllocateAttempts, attempts)
}

func TestAllocateAbortsOnOtherErrors(t *testing.T) {
	db := newTestDB(t)
	a := fixedYearAllocator(db, 2025)
	p := newTestPrincipal(t, db)

	boom := errors.New("disk on fire")
	attempts := 0
	_, err := a.Allocate(p.TenantID, SequenceClient, func(string) error {
		attempts++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}

func TestAllocateRealCollision(t *testing.T) {
	db := newTestDB(t)
	a := fixedYearAllocator(db, 2025)
	p := newTestPrincipal(t, db)

	number, err := a.Allocate(p.TenantID, SequenceEmployee, func(number string) error {
		return db.Create(&models.Employee{TenantID: p.TenantID, Number: number, Name: "first"}).Error
	})
	require.NoError(t, err)
	assert.Equal(t, "EMP001", number)

	number, err = a.Allocate(p.TenantID, SequenceEmployee, func(number string) error {
		return db.Create(&models.Employee{TenantID: p.TenantID, Number: number, Name: "second"}).Error
	})
	require.NoError(t, err)
	assert.Equal(t, "EMP002", number)
}

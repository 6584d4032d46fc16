package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/atelierworks/atelier-backend/apperr"
	"github.com/atelierworks/atelier-backend/metrics"
	"github.com/atelierworks/atelier-backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SequenceKind names one independent per-tenant counter. Kinds never share a
// namespace.
type SequenceKind string

const (
	SequenceProduction SequenceKind = "project"
	SequencePipeline   SequenceKind = "pipeline-project"
	SequenceClient     SequenceKind = "client"
	SequenceEmployee   SequenceKind = "employee"
)

// maxAllocateAttempts bounds the conflict retry loop. Allocation is
// read-then-write without a store-level counter, so concurrent calls for the
// same (tenant, kind) can race; the uniqueness index catches the loser and
// the retry re-reads. This is an accepted race, not an eliminated one.
const maxAllocateAttempts = 3

type sequenceSpec struct {
	prefix     string
	pad        int
	yearSuffix bool
	pattern    *regexp.Regexp
}

var sequenceSpecs = map[SequenceKind]sequenceSpec{
	SequenceProduction: {prefix: "PR", pad: 3, yearSuffix: true, pattern: regexp.MustCompile(`^PR(\d+)`)},
	SequencePipeline:   {prefix: "PL", pad: 3, yearSuffix: true, pattern: regexp.MustCompile(`^PL(\d+)`)},
	SequenceClient:     {prefix: "CL", pad: 4, yearSuffix: false, pattern: regexp.MustCompile(`^CL(\d+)`)},
	SequenceEmployee:   {prefix: "EMP", pad: 3, yearSuffix: false, pattern: regexp.MustCompile(`^EMP(\d+)`)},
}

// SequenceAllocator generates the next human-readable identifier per tenant
// and kind (PR003/2025, CL0007, EMP003).
type SequenceAllocator struct {
	db  *gorm.DB
	now func() time.Time
}

// NewSequenceAllocator creates an allocator over an injected store handle
func NewSequenceAllocator(db *gorm.DB) *SequenceAllocator {
	return &SequenceAllocator{db: db, now: time.Now}
}

// Next reads the most recently created identifier for (tenant, kind), parses
// its numeric part and formats the increment. Starts at 1 when no prior row
// exists. Gaps are acceptable; uniqueness is enforced by the store index, not
// here.
func (a *SequenceAllocator) Next(tenantID uuid.UUID, kind SequenceKind) (string, error) {
	spec, ok := sequenceSpecs[kind]
	if !ok {
		return "", apperr.Newf(apperr.CodeInvalid, "unknown sequence kind %q", kind)
	}

	last, err := a.lastNumber(tenantID, kind)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeUpstream, "could not read last issued number", err)
	}

	n := 0
	if last != "" {
		if m := spec.pattern.FindStringSubmatch(last); m != nil {
			n, _ = strconv.Atoi(m[1])
		}
	}

	number := fmt.Sprintf("%s%0*d", spec.prefix, spec.pad, n+1)
	if spec.yearSuffix {
		number += "/" + strconv.Itoa(a.now().Year())
	}
	return number, nil
}

// Allocate runs Next and the caller's insert under the conflict retry loop.
// The insert must fail with gorm.ErrDuplicatedKey when the generated number
// collides; any other error aborts immediately.
func (a *SequenceAllocator) Allocate(tenantID uuid.UUID, kind SequenceKind, insert func(number string) error) (string, error) {
	for attempt := 0; attempt < maxAllocateAttempts; attempt++ {
		number, err := a.Next(tenantID, kind)
		if err != nil {
			return "", err
		}

		err = insert(number)
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", err
		}
		metrics.SequenceRetriesTotal.WithLabelValues(string(kind)).Inc()
	}
	return "", apperr.Newf(apperr.CodeExhaustedRetries, "could not allocate %s number after %d attempts", kind, maxAllocateAttempts)
}

// lastNumber returns the identifier of the most recently created row for the
// kind's backing table. Unscoped: archived and deleted rows still reserve
// their numbers, so the counter must see past soft deletes.
func (a *SequenceAllocator) lastNumber(tenantID uuid.UUID, kind SequenceKind) (string, error) {
	var row struct{ Number string }

	q := a.db.Unscoped()
	switch kind {
	case SequenceProduction:
		q = q.Model(&models.Project{}).Where("tenant_id = ? AND state = ?", tenantID, models.StateProduction)
	case SequencePipeline:
		q = q.Model(&models.Project{}).Where("tenant_id = ? AND state = ?", tenantID, models.StatePipeline)
	case SequenceClient:
		q = q.Model(&models.Client{}).Where("tenant_id = ?", tenantID)
	case SequenceEmployee:
		q = q.Model(&models.Employee{}).Where("tenant_id = ?", tenantID)
	}

	err := q.Select("number").Order("created_at DESC").Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return row.Number, nil
}

package links

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/apex/log"
	"github.com/reportdesk/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrValidation is returned when a required field is blank after
	// trimming.
	ErrValidation = errors.New("name, category and url are required")

	// ErrDuplicateURL is returned when an insert collides with the
	// unique index on url.
	ErrDuplicateURL = errors.New("a link with this url already exists")
)

// StorageError wraps any persistence failure that is neither a
// validation problem nor a duplicate url.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store owns the link table. All writes run in their own transaction.
type Store struct {
	db       *gorm.DB
	seedOnce sync.Once
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Page is one slice of the directory plus the pagination metadata the
// views render.
type Page struct {
	Links   []models.Link
	Current int
	Total   int
	HasNext bool
	HasPrev bool
}

// List returns the links ordered by id for the requested page. Pages
// out of range come back empty; read failures are logged and degrade
// to an empty page rather than failing the request.
func (s *Store) List(page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	var total int64
	if err := s.db.Model(&models.Link{}).Count(&total).Error; err != nil {
		log.WithError(err).Error("failed to count links")
		return Page{Current: page}
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	var records []models.Link
	err := s.db.Order("id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		log.WithError(err).Error("failed to list links")
		return Page{Current: page, Total: totalPages}
	}

	return Page{
		Links:   records,
		Current: page,
		Total:   totalPages,
		HasNext: page < totalPages,
		HasPrev: page > 1,
	}
}

// Add validates and inserts one link.
func (s *Store) Add(name, category, url string) (*models.Link, error) {
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	url = strings.TrimSpace(url)
	if name == "" || category == "" || url == "" {
		return nil, ErrValidation
	}

	link := &models.Link{Name: name, Category: category, URL: url}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(link).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateURL
		}
		return nil, &StorageError{Err: err}
	}
	return link, nil
}

// BulkAdd inserts the valid rows as one batch. Rows with fewer than
// three columns or any blank field are skipped and counted, never
// aborting the batch. If the batch insert itself fails the whole
// transaction rolls back and zero rows count as added; the validation
// skip count is still reported.
func (s *Store) BulkAdd(rows [][]string) (added, skipped int, err error) {
	var batch []models.Link
	for _, row := range rows {
		if len(row) < 3 {
			skipped++
			continue
		}
		name := strings.TrimSpace(row[0])
		category := strings.TrimSpace(row[1])
		url := strings.TrimSpace(row[2])
		if name == "" || category == "" || url == "" {
			skipped++
			continue
		}
		batch = append(batch, models.Link{Name: name, Category: category, URL: url})
	}

	if len(batch) == 0 {
		return 0, skipped, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&batch).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, skipped, ErrDuplicateURL
		}
		return 0, skipped, &StorageError{Err: err}
	}
	return len(batch), skipped, nil
}

// ReadCSV parses a bulk-upload file into rows for BulkAdd. The first
// record is the "Name, Category, URL" header and is dropped. Rows are
// allowed to have uneven column counts; BulkAdd skips the short ones.
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	if len(records) > 0 {
		records = records[1:]
	}
	return records, nil
}

// EnsureSeeded creates the example rows the first time the process
// touches an empty table. It runs at most once per process and never
// re-seeds a non-empty table.
func (s *Store) EnsureSeeded() error {
	var err error
	s.seedOnce.Do(func() {
		err = s.seed()
	})
	return err
}

func (s *Store) seed() error {
	var count int64
	if err := s.db.Model(&models.Link{}).Count(&count).Error; err != nil {
		return &StorageError{Err: err}
	}
	if count > 0 {
		return nil
	}

	seeds := SeedLinks()
	if err := s.db.Create(&seeds).Error; err != nil {
		return &StorageError{Err: err}
	}
	log.WithField("count", len(seeds)).Info("seeded example links")
	return nil
}

// SeedLinks is the fixed set of example records inserted into an empty
// table at first startup.
func SeedLinks() []models.Link {
	return []models.Link{
		{Name: "Daily Attendance Tracker", Category: "Operations", URL: "https://docs.example.com/sheets/attendance"},
		{Name: "Inbound Receiving Log", Category: "Operations", URL: "https://docs.example.com/sheets/receiving-log"},
		{Name: "Monthly Expense Report", Category: "Finance", URL: "https://docs.example.com/sheets/expenses"},
		{Name: "Staff Contact Directory", Category: "HR", URL: "https://docs.example.com/sheets/contacts"},
	}
}

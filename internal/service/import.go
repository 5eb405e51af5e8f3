package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pageza/comedor/backend/internal/events"
	"github.com/pageza/comedor/backend/internal/models"
	"github.com/pageza/comedor/backend/internal/schedule"
	"github.com/pageza/comedor/backend/internal/types"
)

// Import sources recorded on ImportRun rows.
const (
	SourceCLI      = "cli"
	SourceJSON     = "json"
	SourceCSV      = "csv"
	SourceTemplate = "template"
)

var errDateTaken = errors.New("menu already exists for date")

// ImportOptions control how a MenuData document is placed on the calendar.
type ImportOptions struct {
	StartDate  time.Time
	Convention schedule.Convention
	Source     string
	// DeleteExisting removes the menus inside the imported date span first.
	DeleteExisting bool
	ArchiveKey     string
}

// ImportService places MenuData documents on the calendar. References
// (allergens, dishes, plate templates) are resolved first, then every day
// is written in its own transaction.
type ImportService struct {
	db        *gorm.DB
	publisher events.Publisher
}

func NewImportService(db *gorm.DB, publisher events.Publisher) *ImportService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &ImportService{db: db, publisher: publisher}
}

type plannedDay struct {
	week int
	day  types.MenuDay
	date time.Time
}

// Import runs one batch. Only invalid input and reference resolution failures
// are returned as errors; per-day problems land in the summary.
func (s *ImportService) Import(ctx context.Context, data *types.MenuData, opts ImportOptions) (*types.ImportSummary, error) {
	if err := data.Validate(); err != nil {
		return nil, invalidf("%v", err)
	}
	if opts.StartDate.IsZero() {
		return nil, invalidf("start date is required")
	}
	if opts.Source == "" {
		opts.Source = SourceJSON
	}

	started := time.Now()
	start := schedule.Midnight(opts.StartDate)
	summary := types.NewImportSummary()
	db := s.db.WithContext(ctx)

	logger := log.WithFields(log.Fields{
		"source":     opts.Source,
		"start_date": schedule.FormatDate(start),
		"convention": opts.Convention.String(),
		"weeks":      len(data.Weeks),
	})
	logger.Info("starting menu import")

	dishIDs, err := s.resolveReferences(db, data, summary)
	if err != nil {
		logger.WithError(err).Error("reference resolution failed")
		return nil, err
	}

	days := s.plan(data, start, opts.Convention, summary)
	if opts.DeleteExisting && len(days) > 0 {
		first, last := days[0].date, days[0].date
		for _, d := range days[1:] {
			if d.date.Before(first) {
				first = d.date
			}
			if d.date.After(last) {
				last = d.date
			}
		}
		removed, err := deleteMenusBetween(db, first, last)
		if err != nil {
			return nil, fmt.Errorf("failed to delete existing menus: %w", err)
		}
		logger.Infof("deleted %d existing menus between %s and %s", len(removed), schedule.FormatDate(first), schedule.FormatDate(last))
	}

	for _, d := range days {
		dateStr := schedule.FormatDate(d.date)
		err := s.placeDay(db, d, dishIDs)
		switch {
		case err == nil:
			summary.CreatedCount++
			summary.CreatedDates = append(summary.CreatedDates, dateStr)
		case errors.Is(err, errDateTaken), errors.Is(err, gorm.ErrDuplicatedKey):
			summary.SkippedCount++
			summary.SkippedDates = append(summary.SkippedDates, dateStr)
		default:
			summary.ErrorCount++
			summary.ErrorMessages = append(summary.ErrorMessages,
				fmt.Sprintf("week %d %s (%s): %v", d.week, d.day.Day, dateStr, err))
			logger.WithError(err).Warnf("failed to import %s", dateStr)
		}
	}

	s.record(ctx, summary, opts, start, started)

	logger.WithFields(log.Fields{
		"created": summary.CreatedCount,
		"skipped": summary.SkippedCount,
		"errors":  summary.ErrorCount,
	}).Info("menu import finished")
	return summary, nil
}

// ImportTemplate applies a stored menu template from start using the
// Thursday-first day convention.
func (s *ImportService) ImportTemplate(ctx context.Context, templateID uint, start time.Time) (*types.ImportSummary, error) {
	data, err := templateMenuData(s.db.WithContext(ctx), templateID)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, data, ImportOptions{
		StartDate:  start,
		Convention: schedule.ThursdayFirst,
		Source:     SourceTemplate,
	})
}

// resolveReferences upserts every allergen, dish and plate template the
// document mentions and returns the dish ids by name.
func (s *ImportService) resolveReferences(db *gorm.DB, data *types.MenuData, summary *types.ImportSummary) (map[string]uint, error) {
	allergenNames := append([]string{}, data.Allergens...)
	var dishOrder []string
	dishAllergens := make(map[string][]string)

	for _, w := range data.Weeks {
		for _, day := range w.Days {
			for _, meal := range day.Meals {
				for _, item := range meal.Items {
					name := strings.TrimSpace(item.Name)
					if name == "" {
						continue
					}
					if _, ok := dishAllergens[name]; !ok {
						dishOrder = append(dishOrder, name)
						dishAllergens[name] = []string{}
					}
					dishAllergens[name] = append(dishAllergens[name], item.Allergens...)
					allergenNames = append(allergenNames, item.Allergens...)
				}
			}
		}
	}

	allergens, err := upsertAllergens(db, allergenNames)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]models.Allergen, len(allergens))
	for _, a := range allergens {
		byName[a.Name] = a
	}

	dishIDs := make(map[string]uint, len(dishOrder))
	for _, name := range dishOrder {
		var links []models.Allergen
		for _, a := range uniqueNames(dishAllergens[name]) {
			links = append(links, byName[a])
		}

		dish, _, err := ensureDish(db, name, links)
		if err != nil {
			return nil, err
		}
		dishIDs[name] = dish.ID

		created, err := bumpPlateTemplate(db, name, links)
		if err != nil {
			return nil, err
		}
		if created {
			summary.TemplatesCreated++
		} else {
			summary.TemplatesUpdated++
		}
	}

	log.Debugf("resolved %d allergens and %d dishes", len(allergens), len(dishIDs))
	return dishIDs, nil
}

// plan projects every day that has something to serve. Unknown labels are
// reported as warnings.
func (s *ImportService) plan(data *types.MenuData, start time.Time, c schedule.Convention, summary *types.ImportSummary) []plannedDay {
	var days []plannedDay
	for _, w := range data.Weeks {
		for _, day := range w.Days {
			if !hasItems(day) {
				continue
			}
			date, err := schedule.Project(start, w.Week, day.Day, c)
			if err != nil {
				summary.Warnings = append(summary.Warnings, fmt.Sprintf("week %d: skipped day %q: %v", w.Week, day.Day, err))
				continue
			}
			days = append(days, plannedDay{week: w.Week, day: day, date: date})
		}
	}
	return days
}

func hasItems(day types.MenuDay) bool {
	for _, m := range day.Meals {
		for _, item := range m.Items {
			if strings.TrimSpace(item.Name) != "" {
				return true
			}
		}
	}
	return false
}

// placeDay writes one menu unless its date is already taken.
func (s *ImportService) placeDay(db *gorm.DB, d plannedDay, dishIDs map[string]uint) error {
	menu := models.Menu{Date: datatypes.Date(d.date)}
	for _, m := range d.day.Meals {
		if !models.ValidMealType(m.Type) {
			return invalidf("invalid meal type %q", m.Type)
		}
		meal := models.Meal{Type: m.Type}
		for _, item := range m.Items {
			name := strings.TrimSpace(item.Name)
			if name == "" {
				continue
			}
			id, ok := dishIDs[name]
			if !ok {
				return fmt.Errorf("dish %q was not resolved", name)
			}
			meal.Items = append(meal.Items, models.MealItem{DishID: id, Order: len(meal.Items)})
		}
		if len(meal.Items) > 0 {
			menu.Meals = append(menu.Meals, meal)
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Menu{}).Where("date = ?", menu.Date).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check existing menu: %w", err)
		}
		if count > 0 {
			return errDateTaken
		}
		return tx.Create(&menu).Error
	})
}

// record stores the ImportRun audit row and publishes the import event.
// Failures here are logged and surfaced as warnings.
func (s *ImportService) record(ctx context.Context, summary *types.ImportSummary, opts ImportOptions, start, started time.Time) {
	run := models.ImportRun{
		Source:           opts.Source,
		StartDate:        start,
		CreatedCount:     summary.CreatedCount,
		SkippedCount:     summary.SkippedCount,
		ErrorCount:       summary.ErrorCount,
		TemplatesCreated: summary.TemplatesCreated,
		TemplatesUpdated: summary.TemplatesUpdated,
		ArchiveKey:       opts.ArchiveKey,
		StartedAt:        started,
		FinishedAt:       time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		log.WithError(err).Error("failed to record import run")
		summary.Warnings = append(summary.Warnings, "import run was not recorded")
		return
	}
	summary.RunID = run.ID.String()

	evt := events.MenuImported{
		RunID:        summary.RunID,
		Source:       run.Source,
		StartDate:    schedule.FormatDate(start),
		CreatedCount: summary.CreatedCount,
		SkippedCount: summary.SkippedCount,
		ErrorCount:   summary.ErrorCount,
		CreatedDates: summary.CreatedDates,
		FinishedAt:   run.FinishedAt,
	}
	if err := s.publisher.PublishMenuImported(ctx, evt); err != nil {
		log.WithError(err).Warn("failed to publish import event")
	}
}

// Runs lists the most recent import runs.
func (s *ImportService) Runs(ctx context.Context, limit int) ([]models.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []models.ImportRun
	if err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}
	return runs, nil
}

// Run returns one recorded import run.
func (s *ImportService) Run(ctx context.Context, id string) (*models.ImportRun, error) {
	runID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, invalidf("invalid run id %q", id)
	}
	var run models.ImportRun
	if err := s.db.WithContext(ctx).Where("id = ?", runID).First(&run).Error; err != nil {
		return nil, lookupErr(err, "import run")
	}
	return &run, nil
}

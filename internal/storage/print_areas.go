package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"print-personalizer/internal/coords"
	"print-personalizer/internal/models"

	"go.uber.org/zap"
)

var ErrPrintAreaNotFound = errors.New("print area not found")

// migratedPrecision is the number of decimals kept for stored percentages.
const migratedPrecision = 4

const printAreaColumns = `
	pa.id, pa.side_id, pa.name, pa.display_name, pa.x, pa.y, pa.width, pa.height,
	pa.is_relative_coordinates, pa.reference_width, pa.reference_height,
	pa.printing_method, pa.allow_text, pa.allow_images, pa.allow_shapes, pa.allow_clipart,
	pa.max_colors, pa.base_price`

// PrintAreaPlacement is a print area together with the image of its side.
type PrintAreaPlacement struct {
	models.PrintArea
	SideImageURL string `db:"side_image_url" json:"sideImageUrl"`
}

func (s *PostgresStorage) GetPrintAreaPlacement(ctx context.Context, areaID string) (*PrintAreaPlacement, error) {
	const operation = "storage.GetPrintAreaPlacement"

	query := `SELECT` + printAreaColumns + `, ps.image_url AS side_image_url
		FROM print_areas pa
		JOIN product_sides ps ON ps.id = pa.side_id
		WHERE pa.id = $1`

	var p PrintAreaPlacement
	if err := s.db.GetContext(ctx, &p, query, areaID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %s: %w", operation, areaID, ErrPrintAreaNotFound)
		}
		return nil, fmt.Errorf("%s: failed to get print area: %w", operation, err)
	}
	return &p, nil
}

// ListLegacyPrintAreas returns the areas still stored in pixels.
func (s *PostgresStorage) ListLegacyPrintAreas(ctx context.Context) ([]models.PrintArea, error) {
	const operation = "storage.ListLegacyPrintAreas"

	query := `SELECT` + printAreaColumns + `
		FROM print_areas pa
		WHERE pa.is_relative_coordinates = FALSE
		ORDER BY pa.id`

	var areas []models.PrintArea
	if err := s.db.SelectContext(ctx, &areas, query); err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}
	return areas, nil
}

type MigrationReport struct {
	Scanned  int
	Migrated int
	Adjusted int
	Areas    []coords.NamedRelative
}

// MigrateLegacyPrintAreas converts every pixel area to percentages of its
// reference image and stores the result in one transaction. Areas without a
// recorded reference are converted against fallback. Boxes that overflow
// the image are normalized back inside it. With dryRun nothing is written.
func (s *PostgresStorage) MigrateLegacyPrintAreas(ctx context.Context, fallback coords.CanvasSize, dryRun bool) (*MigrationReport, error) {
	const operation = "storage.MigrateLegacyPrintAreas"

	legacy, err := s.ListLegacyPrintAreas(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", operation, err)
	}

	report := &MigrationReport{Scanned: len(legacy)}
	if len(legacy) == 0 {
		s.logger.Info("No legacy print areas to migrate")
		return report, nil
	}

	// Areas are converted in batches sharing one reference image.
	var order []coords.CanvasSize
	batches := make(map[coords.CanvasSize][]coords.NamedAbsolute)
	for _, area := range legacy {
		ref := coords.CanvasSize{Width: area.ReferenceWidth, Height: area.ReferenceHeight}
		if !ref.Valid() {
			ref = fallback
		}
		if _, ok := batches[ref]; !ok {
			order = append(order, ref)
		}
		batches[ref] = append(batches[ref], coords.NamedAbsolute{
			ID:       area.ID,
			Name:     area.Name,
			Absolute: coords.Absolute{X: area.X, Y: area.Y, Width: area.Width, Height: area.Height},
		})
	}

	var references []coords.CanvasSize
	for _, ref := range order {
		for _, converted := range coords.MigrateAreasToRelative(batches[ref], ref) {
			rounded := coords.Round(converted.Relative, migratedPrecision)
			if !coords.ValidateRelative(rounded) {
				report.Adjusted++
				s.logger.Warn("Print area overflows its reference image, normalizing",
					zap.String("area_id", converted.ID),
					zap.Float64("x", rounded.X), zap.Float64("y", rounded.Y),
					zap.Float64("width", rounded.Width), zap.Float64("height", rounded.Height))
				rounded = coords.Round(coords.NormalizeArea(rounded), migratedPrecision)
			}
			converted.Relative = rounded
			report.Areas = append(report.Areas, converted)
			references = append(references, ref)
		}
	}

	if dryRun {
		return report, nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", operation, err)
	}
	defer func() { _ = tx.Rollback() }()

	const update = `
		UPDATE print_areas
		SET x = $1, y = $2, width = $3, height = $4,
		    is_relative_coordinates = TRUE,
		    reference_width = $5, reference_height = $6
		WHERE id = $7 AND is_relative_coordinates = FALSE
	`
	for i, area := range report.Areas {
		res, err := tx.ExecContext(ctx, update,
			area.X, area.Y, area.Width, area.Height,
			references[i].Width, references[i].Height,
			area.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: update %s: %w", operation, area.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			report.Migrated++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", operation, err)
	}

	s.logger.Info("Print areas migrated",
		zap.Int("scanned", report.Scanned),
		zap.Int("migrated", report.Migrated),
		zap.Int("adjusted", report.Adjusted))
	return report, nil
}

package labels

import (
	"context"
	"time"

	"github.com/Ilay3/UchetNZP-sub000/internal/repository"
	custom_error "github.com/Ilay3/UchetNZP-sub000/pkg/errors"
	"github.com/Ilay3/UchetNZP-sub000/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

// PartGetter is the slice of the catalog the label service needs.
type PartGetter interface {
	GetPart(ctx context.Context, id int) (*models.Part, error)
}

type LabelService struct {
	txRunner  repository.TxRunner
	labelRepo LabelRepository
	parts     PartGetter
	log       *zap.Logger
}

func NewService(txRunner repository.TxRunner, labelRepo LabelRepository, parts PartGetter, log *zap.Logger) *LabelService {
	return &LabelService{
		txRunner:  txRunner,
		labelRepo: labelRepo,
		parts:     parts,
		log:       log,
	}
}

// CreateLabels creates count labels with auto-generated sequential numbers,
// a contiguous run starting at max(existing numeric numbers)+1. Number
// generation runs under serializable isolation so two concurrent batches
// cannot pick the same next number.
func (s *LabelService) CreateLabels(ctx context.Context, partID int, labelDate time.Time, quantity, count int) ([]models.Label, error) {
	if quantity <= 0 {
		return nil, custom_error.NewValidationError("quantity", "label quantity must be positive")
	}
	if count <= 0 {
		return nil, custom_error.NewValidationError("count", "label count must be positive")
	}
	if err := s.requirePart(ctx, partID); err != nil {
		return nil, err
	}

	var created []models.Label
	err := s.txRunner.WithSerializableTransaction(ctx, func(tx *goqu.TxDatabase) error {
		max, err := s.labelRepo.GetMaxNumericNumber(tx)
		if err != nil {
			return err
		}

		for i := 1; i <= count; i++ {
			label, err := s.labelRepo.InsertLabel(tx, models.Label{
				PartID:            partID,
				Number:            FormatNumber(max + i),
				Quantity:          quantity,
				RemainingQuantity: quantity,
				LabelDate:         labelDate,
			})
			if err != nil {
				return err
			}
			created = append(created, label)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("labels created",
		zap.Int("part_id", partID),
		zap.Int("count", len(created)),
		zap.String("first_number", created[0].Number))
	return created, nil
}

// CreateLabelWithNumber creates a label under a manually supplied number.
// The number is canonicalized and must be globally unique.
func (s *LabelService) CreateLabelWithNumber(ctx context.Context, partID int, labelDate time.Time, quantity int, number string) (models.Label, error) {
	if quantity <= 0 {
		return models.Label{}, custom_error.NewValidationError("quantity", "label quantity must be positive")
	}
	canonical, err := CanonicalNumber(number)
	if err != nil {
		return models.Label{}, err
	}
	if err := s.requirePart(ctx, partID); err != nil {
		return models.Label{}, err
	}

	var created models.Label
	err = s.txRunner.WithSerializableTransaction(ctx, func(tx *goqu.TxDatabase) error {
		exists, err := s.labelRepo.NumberExists(tx, canonical)
		if err != nil {
			return err
		}
		if exists {
			return custom_error.NewConflictError("label number %s already exists", canonical)
		}

		created, err = s.labelRepo.InsertLabel(tx, models.Label{
			PartID:            partID,
			Number:            canonical,
			Quantity:          quantity,
			RemainingQuantity: quantity,
			LabelDate:         labelDate,
		})
		return err
	})
	if err != nil {
		return models.Label{}, err
	}

	return created, nil
}

// UpdateLabel changes the quantity and date of an untouched label. A label
// that has been partially consumed or is referenced anywhere is immutable.
func (s *LabelService) UpdateLabel(ctx context.Context, id, quantity int, labelDate time.Time) (models.Label, error) {
	if quantity <= 0 {
		return models.Label{}, custom_error.NewValidationError("quantity", "label quantity must be positive")
	}

	var updated models.Label
	err := s.txRunner.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
		label, err := s.mutableLabel(tx, id)
		if err != nil {
			return err
		}

		label.Quantity = quantity
		label.RemainingQuantity = quantity
		label.LabelDate = labelDate
		if err := s.labelRepo.UpdateLabel(tx, *label); err != nil {
			return err
		}

		updated = *label
		return nil
	})
	if err != nil {
		return models.Label{}, err
	}

	return updated, nil
}

func (s *LabelService) DeleteLabel(ctx context.Context, id int) error {
	return s.txRunner.WithTransaction(ctx, func(tx *goqu.TxDatabase) error {
		if _, err := s.mutableLabel(tx, id); err != nil {
			return err
		}
		return s.labelRepo.DeleteLabel(tx, id)
	})
}

func (s *LabelService) GetLabels(ctx context.Context, partID int) ([]models.Label, error) {
	return s.labelRepo.GetLabels(ctx, partID)
}

// mutableLabel loads a label and enforces the immutable-once-touched rule.
func (s *LabelService) mutableLabel(tx *goqu.TxDatabase, id int) (*models.Label, error) {
	label, err := s.labelRepo.GetLabel(tx, id)
	if err != nil {
		return nil, err
	}
	if label == nil {
		return nil, custom_error.NewNotFoundError("label", "id %d", id)
	}
	if label.RemainingQuantity != label.Quantity {
		return nil, custom_error.NewConflictError("label %s has consumed quantity and cannot be changed", label.Number)
	}

	referenced, err := s.labelRepo.IsReferenced(tx, id)
	if err != nil {
		return nil, err
	}
	if referenced {
		return nil, custom_error.NewConflictError("label %s is referenced by receipts, transfers or warehouse items", label.Number)
	}

	return label, nil
}

func (s *LabelService) requirePart(ctx context.Context, partID int) error {
	part, err := s.parts.GetPart(ctx, partID)
	if err != nil {
		return err
	}
	if part == nil {
		return custom_error.NewNotFoundError("part", "id %d", partID)
	}
	return nil
}

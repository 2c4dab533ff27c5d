package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/solmount/enquiry-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnquiryOrderSequence is the sequence row backing order numbers
const EnquiryOrderSequence = "enquiry_order"

// OrderSequenceRepository hands out sequential ORD-xxxx order numbers.
// Increments run inside a transaction with a row lock so concurrent order
// confirmations never produce duplicates.
type OrderSequenceRepository struct {
	db *gorm.DB
}

func NewOrderSequenceRepository(db *gorm.DB) *OrderSequenceRepository {
	return &OrderSequenceRepository{db: db}
}

// NextOrderNumber atomically allocates the next order number. On first use
// the sequence is seeded from the highest order number already assigned, so
// numbering continues where pre-existing data left off.
func (r *OrderSequenceRepository) NextOrderNumber(ctx context.Context) (string, error) {
	var nextSeq int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.OrderSequence

		query := tx.Where("name = ?", EnquiryOrderSequence)
		// sqlite has no row locks; the write transaction serializes instead
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		result := query.First(&seq)
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			seeded, err := r.maxAssignedSuffix(tx)
			if err != nil {
				return fmt.Errorf("failed to seed order sequence: %w", err)
			}
			nextSeq = seeded + 1
			seq = domain.OrderSequence{
				Name:         EnquiryOrderSequence,
				LastSequence: nextSeq,
				CreatedAt:    time.Now(),
				UpdatedAt:    time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create order sequence: %w", err)
			}
			return nil
		}
		if result.Error != nil {
			return fmt.Errorf("failed to get order sequence: %w", result.Error)
		}

		nextSeq = seq.LastSequence + 1
		if err := tx.Model(&seq).Updates(map[string]interface{}{
			"last_sequence": nextSeq,
			"updated_at":    time.Now(),
		}).Error; err != nil {
			return fmt.Errorf("failed to update order sequence: %w", err)
		}
		return nil
	})

	if err != nil {
		return "", err
	}

	return fmt.Sprintf("ORD-%04d", nextSeq), nil
}

// CurrentSequence returns the last used sequence value without incrementing.
// Returns 0 if the sequence has not been used yet.
func (r *OrderSequenceRepository) CurrentSequence(ctx context.Context) (int, error) {
	var seq domain.OrderSequence
	result := r.db.WithContext(ctx).Where("name = ?", EnquiryOrderSequence).First(&seq)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get order sequence: %w", result.Error)
	}
	return seq.LastSequence, nil
}

func (r *OrderSequenceRepository) maxAssignedSuffix(tx *gorm.DB) (int, error) {
	var numbers []string
	err := tx.Model(&domain.Enquiry{}).
		Where("order_number IS NOT NULL").
		Pluck("order_number", &numbers).Error
	if err != nil {
		return 0, err
	}

	max := 0
	for _, n := range numbers {
		if suffix := domain.OrderNumberSuffix(n); suffix > max {
			max = suffix
		}
	}
	return max, nil
}

package service

import (
	"context"

	"modapos/internal/apierror"
	"modapos/internal/dto"
	"modapos/internal/model"
	"modapos/internal/repository"

	"github.com/google/uuid"
)

type ReceiptService interface {
	Get(ctx context.Context, id uuid.UUID) (*dto.ReceiptResponse, error)
	ForOrder(ctx context.Context, orderID uuid.UUID) (*dto.ReceiptResponse, error)
	ForConditional(ctx context.Context, conditionalID uuid.UUID) (*dto.ReceiptResponse, error)
	// PDFPath returns the file of an issued receipt.
	PDFPath(ctx context.Context, id uuid.UUID) (string, error)
}

type receiptService struct {
	receipts repository.ReceiptRepository
}

func NewReceiptService(receipts repository.ReceiptRepository) ReceiptService {
	return &receiptService{receipts: receipts}
}

func (s *receiptService) Get(ctx context.Context, id uuid.UUID) (*dto.ReceiptResponse, error) {
	rc, err := s.receipts.FindByID(ctx, id)
	if err != nil {
		return nil, dbErr(err, "receipt not found")
	}
	return toReceiptResponse(rc), nil
}

func (s *receiptService) ForOrder(ctx context.Context, orderID uuid.UUID) (*dto.ReceiptResponse, error) {
	rc, err := s.receipts.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, dbErr(err, "no receipt for this order yet")
	}
	return toReceiptResponse(rc), nil
}

func (s *receiptService) ForConditional(ctx context.Context, conditionalID uuid.UUID) (*dto.ReceiptResponse, error) {
	rc, err := s.receipts.FindByConditionalID(ctx, conditionalID)
	if err != nil {
		return nil, dbErr(err, "no receipt for this conditional yet")
	}
	return toReceiptResponse(rc), nil
}

func (s *receiptService) PDFPath(ctx context.Context, id uuid.UUID) (string, error) {
	rc, err := s.receipts.FindByID(ctx, id)
	if err != nil {
		return "", dbErr(err, "receipt not found")
	}
	if rc.Status != model.ReceiptIssued || rc.PDFPath == nil {
		return "", apierror.Conflict("receipt is not issued yet")
	}
	return *rc.PDFPath, nil
}

func toReceiptResponse(rc *model.Receipt) *dto.ReceiptResponse {
	resp := &dto.ReceiptResponse{
		ID:         rc.ID.String(),
		Kind:       rc.Kind,
		Status:     rc.Status,
		RetryCount: rc.RetryCount,
		LastError:  rc.LastError,
		CreatedAt:  rc.CreatedAt.Format(timeLayout),
	}
	if rc.OrderID != nil {
		id := rc.OrderID.String()
		resp.OrderID = &id
	}
	if rc.ConditionalID != nil {
		id := rc.ConditionalID.String()
		resp.ConditionalID = &id
	}
	return resp
}

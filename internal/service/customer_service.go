package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unclebandit/customer-service/internal/dto"
	appErrors "github.com/unclebandit/customer-service/internal/errors"
	"github.com/unclebandit/customer-service/internal/metrics"
	"github.com/unclebandit/customer-service/internal/model"
	"github.com/unclebandit/customer-service/internal/queue"
	"github.com/unclebandit/customer-service/internal/repository"
)

const (
	customerResource = "Customer"
	customerIDField  = "customerId"
)

// CustomerService holds the customer rules. Queue and Metrics are optional.
type CustomerService struct {
	CustomerRepo repository.CustomerRepositoryInterface
	Queue        queue.Queue
	Metrics      *metrics.Metrics
	Log          *zap.Logger
}

func NewCustomerService(repo repository.CustomerRepositoryInterface, q queue.Queue, m *metrics.Metrics, log *zap.Logger) *CustomerService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CustomerService{
		CustomerRepo: repo,
		Queue:        q,
		Metrics:      m,
		Log:          log.Named("customer.service"),
	}
}

// CreateCustomer rejects a first name that is already taken. The check and the
// insert are separate statements, so concurrent creates can both pass it.
func (s *CustomerService) CreateCustomer(ctx context.Context, in dto.CustomerDTO) (out dto.CustomerDTO, err error) {
	defer func() { s.observe("create", err) }()

	customer := dto.ToCustomer(in)

	existing, err := s.CustomerRepo.FindByFirstName(ctx, customer.FirstName)
	if err != nil {
		return dto.CustomerDTO{}, err
	}
	if existing != nil {
		return dto.CustomerDTO{}, appErrors.NewConflict("Customer already exists")
	}

	if err := s.CustomerRepo.Save(ctx, &customer); err != nil {
		return dto.CustomerDTO{}, err
	}

	out = dto.FromCustomer(customer)
	s.logger().Info("customer created", zap.Int64("customer_id", customer.ID))
	s.publish(model.CustomerCreated, out)
	return out, nil
}

// GetAllCustomers returns the zero-based page. An empty page is NotFound, even
// past the end of a non-empty table.
func (s *CustomerService) GetAllCustomers(ctx context.Context, pageNumber, pageSize int) (resp dto.CustomerResponse, err error) {
	defer func() { s.observe("list", err) }()

	if pageNumber < 0 {
		return dto.CustomerResponse{}, appErrors.NewInvalidInput("pageNumber must not be negative, got %d", pageNumber)
	}
	if pageSize < 1 {
		return dto.CustomerResponse{}, appErrors.NewInvalidInput("pageSize must be positive, got %d", pageSize)
	}

	customers, total, err := s.CustomerRepo.FindPage(ctx, pageNumber, pageSize)
	if err != nil {
		return dto.CustomerResponse{}, err
	}
	if len(customers) == 0 {
		return dto.CustomerResponse{}, appErrors.NewNotFound("Customer not found")
	}

	content := make([]dto.CustomerDTO, len(customers))
	for i, c := range customers {
		content[i] = dto.FromCustomer(c)
	}

	return dto.CustomerResponse{
		Content:       content,
		PageNumber:    pageNumber,
		PageSize:      pageSize,
		TotalElements: total,
	}, nil
}

func (s *CustomerService) GetCustomerByID(ctx context.Context, id int64) (out dto.CustomerDTO, err error) {
	defer func() { s.observe("get", err) }()

	customer, err := s.CustomerRepo.FindByID(ctx, id)
	if err != nil {
		return dto.CustomerDTO{}, err
	}
	if customer == nil {
		return dto.CustomerDTO{}, appErrors.NewNotFound("Customer not found")
	}
	return dto.FromCustomer(*customer), nil
}

// UpdateCustomer overwrites the four mutable fields of customer id.
func (s *CustomerService) UpdateCustomer(ctx context.Context, in dto.CustomerDTO, id int64) (out dto.CustomerDTO, err error) {
	defer func() { s.observe("update", err) }()

	customer, err := s.CustomerRepo.FindByID(ctx, id)
	if err != nil {
		return dto.CustomerDTO{}, err
	}
	if customer == nil {
		return dto.CustomerDTO{}, appErrors.NewResourceNotFound(customerResource, customerIDField, id)
	}

	dto.ApplyTo(customer, in)

	if err := s.CustomerRepo.Save(ctx, customer); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.CustomerDTO{}, appErrors.NewResourceNotFound(customerResource, customerIDField, id)
		}
		return dto.CustomerDTO{}, err
	}

	out = dto.FromCustomer(*customer)
	s.logger().Info("customer updated", zap.Int64("customer_id", id))
	s.publish(model.CustomerUpdated, out)
	return out, nil
}

// DeleteCustomer removes customer id and returns its last known values.
func (s *CustomerService) DeleteCustomer(ctx context.Context, id int64) (out dto.CustomerDTO, err error) {
	defer func() { s.observe("delete", err) }()

	customer, err := s.CustomerRepo.FindByID(ctx, id)
	if err != nil {
		return dto.CustomerDTO{}, err
	}
	if customer == nil {
		return dto.CustomerDTO{}, appErrors.NewResourceNotFound(customerResource, customerIDField, id)
	}

	if err := s.CustomerRepo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.CustomerDTO{}, appErrors.NewResourceNotFound(customerResource, customerIDField, id)
		}
		return dto.CustomerDTO{}, err
	}

	out = dto.FromCustomer(*customer)
	s.logger().Info("customer deleted", zap.Int64("customer_id", id))
	s.publish(model.CustomerDeleted, out)
	return out, nil
}

// publish is best effort; a failed publish never fails the write that caused it.
func (s *CustomerService) publish(eventType string, c dto.CustomerDTO) {
	if s.Queue == nil {
		return
	}
	payload, err := json.Marshal(c)
	if err != nil {
		s.logger().Warn("encode customer event", zap.String("type", eventType), zap.Error(err))
		return
	}
	event := model.CustomerEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		CustomerID: c.CustomerID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.Queue.Publish(queue.CustomerEventsTopic, event); err != nil {
		s.logger().Warn("publish customer event",
			zap.String("type", eventType),
			zap.Int64("customer_id", c.CustomerID),
			zap.Error(err),
		)
	}
}

func (s *CustomerService) observe(operation string, err error) {
	outcome := metrics.OutcomeSuccess
	switch {
	case err == nil:
	case appErrors.IsClientError(err):
		outcome = metrics.OutcomeClient
	default:
		outcome = metrics.OutcomeFailure
		s.logger().Error("customer operation failed", zap.String("operation", operation), zap.Error(err))
	}
	s.Metrics.ObserveOperation(operation, outcome)
}

func (s *CustomerService) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

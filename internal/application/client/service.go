package client

import (
	"context"
	"errors"
	"strings"

	"github.com/clientes/backend/internal/domain/address"
	"github.com/clientes/backend/internal/domain/client"
	"github.com/clientes/backend/internal/domain/shared"
	"github.com/clientes/backend/internal/infrastructure/logger"
	"github.com/clientes/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AddressResolver resolves a raw postal code to an address.
// Peek reads the cache only and never reaches the lookup service.
type AddressResolver interface {
	Resolve(ctx context.Context, raw string) (*address.Address, error)
	Peek(ctx context.Context, raw string) (*address.Address, bool, error)
}

// Service handles client-related business operations
type Service struct {
	clientRepo client.Repository
	resolver   AddressResolver
}

// NewService creates a new Service
func NewService(clientRepo client.Repository, resolver AddressResolver) *Service {
	return &Service{
		clientRepo: clientRepo,
		resolver:   resolver,
	}
}

// List returns every client with its address attached
func (s *Service) List(ctx context.Context) ([]ClientResponse, error) {
	clients, err := s.clientRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	resolved := make(map[address.PostalCode]*address.Address)
	for i := range clients {
		c := &clients[i]
		addr, ok := resolved[c.PostalCode]
		if !ok {
			addr = s.hydrate(ctx, c)
			resolved[c.PostalCode] = addr
		}
		c.AttachAddress(addr)
	}
	return ToClientResponses(clients), nil
}

// GetByID retrieves a client by ID
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.AttachAddress(s.hydrate(ctx, c))

	response := ToClientResponse(c)
	return &response, nil
}

// Create creates a new client after resolving its postal code.
// Nothing is stored unless resolution succeeds.
func (s *Service) Create(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "create")
	defer span.End()

	if strings.TrimSpace(req.PostalCode) == "" {
		return nil, shared.InvalidInput("Postal code is required")
	}
	code, err := address.ParsePostalCode(req.PostalCode)
	if err != nil {
		return nil, shared.InvalidInput("Invalid postal code")
	}

	c, err := client.NewClient(req.Name, code, client.Details{
		Number:     req.Number,
		Complement: req.Complement,
		Email:      req.Email,
		Phone:      req.Phone,
	})
	if err != nil {
		return nil, err
	}

	addr, err := s.resolve(ctx, code)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	c.AttachAddress(addr)

	if err := s.clientRepo.Create(ctx, c); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("client_id", c.ID.String()))
	logger.L(ctx).Info("Client created",
		zap.String("client_id", c.ID.String()),
		zap.String("postal_code", code.String()),
	)

	response := ToClientResponse(c)
	return &response, nil
}

// Update applies the non-nil fields of req to the client.
// The postal code is resolved again only when it changes; on any failure the
// stored record is left untouched.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "client", "update", attribute.String("client_id", id.String()))
	defer span.End()

	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := c.Rename(*req.Name); err != nil {
			return nil, err
		}
	}

	if req.Number != nil || req.Complement != nil || req.Email != nil || req.Phone != nil {
		details := c.Details()
		if req.Number != nil {
			details.Number = *req.Number
		}
		if req.Complement != nil {
			details.Complement = *req.Complement
		}
		if req.Email != nil {
			details.Email = *req.Email
		}
		if req.Phone != nil {
			details.Phone = *req.Phone
		}
		if err := c.SetDetails(details); err != nil {
			return nil, err
		}
	}

	relocated := false
	if req.PostalCode != nil {
		code, err := address.ParsePostalCode(*req.PostalCode)
		if err != nil {
			return nil, shared.InvalidInput("Invalid postal code")
		}
		if code != c.PostalCode {
			addr, err := s.resolve(ctx, code)
			if err != nil {
				telemetry.RecordError(span, err)
				return nil, err
			}
			c.Relocate(*addr)
			relocated = true
		}
	}

	if err := s.clientRepo.Update(ctx, c); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !relocated {
		c.AttachAddress(s.cachedAddress(ctx, c))
	}

	logger.L(ctx).Info("Client updated",
		zap.String("client_id", c.ID.String()),
		zap.Bool("relocated", relocated),
	)

	response := ToClientResponse(c)
	return &response, nil
}

// Delete removes a client. The shared address entry is not touched.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.L(ctx).Info("Client deleted", zap.String("client_id", id.String()))
	return nil
}

// resolve maps address resolution failures onto client-level errors
func (s *Service) resolve(ctx context.Context, code address.PostalCode) (*address.Address, error) {
	addr, err := s.resolver.Resolve(ctx, code.String())
	switch {
	case err == nil:
		return addr, nil
	case errors.Is(err, shared.ErrInvalidPostalCode):
		return nil, shared.InvalidInput("Invalid postal code")
	case errors.Is(err, shared.ErrPostalCodeNotFound):
		return nil, shared.InvalidInput("Postal code " + code.Formatted() + " not found")
	case errors.Is(err, shared.ErrLookupUnavailable):
		return nil, shared.ErrDependencyUnavailable.Wrap(err)
	default:
		return nil, err
	}
}

// hydrate resolves the address for a stored client. Reads degrade to a
// missing address rather than failing when resolution is not possible.
func (s *Service) hydrate(ctx context.Context, c *client.Client) *address.Address {
	addr, err := s.resolver.Resolve(ctx, c.PostalCode.String())
	if err != nil {
		logger.L(ctx).Warn("Could not attach address to client",
			zap.String("client_id", c.ID.String()),
			zap.String("postal_code", c.PostalCode.String()),
			zap.Error(err),
		)
		return nil
	}
	return addr
}

// cachedAddress attaches whatever the cache holds for an unchanged postal code.
// A cold entry leaves the address empty instead of calling the lookup service.
func (s *Service) cachedAddress(ctx context.Context, c *client.Client) *address.Address {
	addr, found, err := s.resolver.Peek(ctx, c.PostalCode.String())
	if err != nil {
		logger.L(ctx).Warn("Could not read cached address for client",
			zap.String("client_id", c.ID.String()),
			zap.String("postal_code", c.PostalCode.String()),
			zap.Error(err),
		)
		return nil
	}
	if !found {
		return nil
	}
	return addr
}

// Package booking implements the table and reservation operations on top
// of the record store. It owns the overlap rule that keeps a table from
// being double-booked for the same date.
package booking

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/rhuss/buchung/pkg/api"
	"github.com/rhuss/buchung/pkg/debug"
	"github.com/rhuss/buchung/pkg/observability"
	"github.com/rhuss/buchung/pkg/storage"
)

// Config holds booking service settings.
type Config struct {
	// SerializeCreates funnels reservation creation through a
	// process-local mutex, closing the check-then-write race between
	// concurrent requests for the same slot. Off by default; with
	// multiple gateway replicas it cannot help and the last write wins.
	SerializeCreates bool
}

// Service implements table and reservation management.
type Service struct {
	store  storage.Store
	cfg    Config
	logger *slog.Logger

	// createMu guards reservation creation when SerializeCreates is set.
	createMu sync.Mutex
}

// NewService creates a booking service over the given store.
func NewService(store storage.Store, cfg Config, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("booking: store must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// CreateTable validates and persists a table. The table id doubles as the
// record key, so creating a table with an existing id overwrites it.
// Returns the id of the created table.
func (s *Service) CreateTable(ctx context.Context, req *api.CreateTableRequest) (int, error) {
	if err := api.ValidateCreateTableRequest(req); err != nil {
		return 0, err
	}

	table := api.Table{
		ID:       *req.ID,
		Number:   *req.Number,
		Places:   *req.Places,
		IsVip:    *req.IsVip,
		MinOrder: req.MinOrder,
	}

	if err := s.store.Put(ctx, storage.CollectionTables, strconv.Itoa(table.ID), tableToRecord(table)); err != nil {
		observability.StoreCallsTotal.WithLabelValues(storage.CollectionTables, "put", "error").Inc()
		return 0, api.NewUpstreamError(err.Error())
	}
	observability.StoreCallsTotal.WithLabelValues(storage.CollectionTables, "put", "ok").Inc()

	s.logger.Info("table created", "id", table.ID, "number", table.Number)
	return table.ID, nil
}

// ListTables returns all tables sorted by id.
func (s *Service) ListTables(ctx context.Context) (*api.TableList, error) {
	records, err := s.store.Scan(ctx, storage.CollectionTables)
	if err != nil {
		return nil, api.NewUpstreamError(err.Error())
	}

	tables := make([]api.Table, 0, len(records))
	for _, rec := range records {
		tables = append(tables, tableFromRecord(rec))
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].ID < tables[j].ID })

	return &api.TableList{Tables: tables}, nil
}

// GetTable returns a single table by id. A missing id is a not-found error.
func (s *Service) GetTable(ctx context.Context, id int) (*api.Table, error) {
	rec, err := s.store.Get(ctx, storage.CollectionTables, strconv.Itoa(id))
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, api.NewNotFoundError(fmt.Sprintf("Table %d not found", id))
		}
		return nil, api.NewUpstreamError(err.Error())
	}

	table := tableFromRecord(rec)
	return &table, nil
}

// CreateReservation validates and persists a reservation. The referenced
// table number must exist and the requested slot must not overlap any
// existing reservation for the same table and date. Returns the generated
// reservation id.
//
// The existence and overlap checks read the store before the write; without
// SerializeCreates two concurrent requests for the same slot can both pass
// the check and both be stored.
func (s *Service) CreateReservation(ctx context.Context, req *api.CreateReservationRequest) (string, error) {
	if err := api.ValidateCreateReservationRequest(req); err != nil {
		return "", err
	}

	if s.cfg.SerializeCreates {
		s.createMu.Lock()
		defer s.createMu.Unlock()
	}

	exists, err := s.tableNumberExists(ctx, *req.TableNumber)
	if err != nil {
		return "", api.NewUpstreamError(err.Error())
	}
	if !exists {
		return "", api.NewValidationError("Invalid reservation")
	}

	reservation := api.Reservation{
		ID:            uuid.New().String(),
		TableNumber:   *req.TableNumber,
		ClientName:    req.ClientName,
		PhoneNumber:   req.PhoneNumber,
		Date:          req.Date,
		SlotTimeStart: req.SlotTimeStart,
		SlotTimeEnd:   req.SlotTimeEnd,
	}

	debug.Log("booking", "checking slot",
		"table_number", reservation.TableNumber,
		"date", reservation.Date,
		"slot", reservation.SlotTimeStart+"-"+reservation.SlotTimeEnd)

	conflict, err := s.hasOverlap(ctx, &reservation)
	if err != nil {
		return "", api.NewUpstreamError(err.Error())
	}
	if conflict {
		observability.ReservationConflictsTotal.Inc()
		s.logger.Info("reservation rejected: slot overlap",
			"table_number", reservation.TableNumber,
			"date", reservation.Date,
			"slot", reservation.SlotTimeStart+"-"+reservation.SlotTimeEnd)
		return "", api.NewValidationError("Invalid reservation")
	}

	if err := s.store.Put(ctx, storage.CollectionReservations, reservation.ID, reservationToRecord(reservation)); err != nil {
		observability.StoreCallsTotal.WithLabelValues(storage.CollectionReservations, "put", "error").Inc()
		return "", api.NewUpstreamError(err.Error())
	}
	observability.StoreCallsTotal.WithLabelValues(storage.CollectionReservations, "put", "ok").Inc()

	s.logger.Info("reservation created",
		"id", reservation.ID,
		"table_number", reservation.TableNumber,
		"date", reservation.Date)
	return reservation.ID, nil
}

// ListReservations returns all reservations, sorted by date, start time,
// and table number, projected without the internal id.
func (s *Service) ListReservations(ctx context.Context) (*api.ReservationList, error) {
	records, err := s.store.Scan(ctx, storage.CollectionReservations)
	if err != nil {
		return nil, api.NewUpstreamError(err.Error())
	}

	views := make([]api.ReservationView, 0, len(records))
	for _, rec := range records {
		r := reservationFromRecord(rec)
		views = append(views, api.ReservationView{
			TableNumber:   r.TableNumber,
			ClientName:    r.ClientName,
			PhoneNumber:   r.PhoneNumber,
			Date:          r.Date,
			SlotTimeStart: r.SlotTimeStart,
			SlotTimeEnd:   r.SlotTimeEnd,
		})
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].Date != views[j].Date {
			return views[i].Date < views[j].Date
		}
		if views[i].SlotTimeStart != views[j].SlotTimeStart {
			return views[i].SlotTimeStart < views[j].SlotTimeStart
		}
		return views[i].TableNumber < views[j].TableNumber
	})

	return &api.ReservationList{Reservations: views}, nil
}

// tableNumberExists reports whether any table carries the given number.
func (s *Service) tableNumberExists(ctx context.Context, number int) (bool, error) {
	records, err := s.store.Scan(ctx, storage.CollectionTables)
	if err != nil {
		return false, err
	}
	for _, rec := range records {
		if tableFromRecord(rec).Number == number {
			return true, nil
		}
	}
	return false, nil
}

// hasOverlap reports whether an existing reservation for the same table
// and date overlaps the candidate's slot.
func (s *Service) hasOverlap(ctx context.Context, candidate *api.Reservation) (bool, error) {
	records, err := s.store.Scan(ctx, storage.CollectionReservations)
	if err != nil {
		return false, err
	}
	for _, rec := range records {
		existing := reservationFromRecord(rec)
		if existing.TableNumber != candidate.TableNumber || existing.Date != candidate.Date {
			continue
		}
		if api.SlotsOverlap(existing.SlotTimeStart, existing.SlotTimeEnd,
			candidate.SlotTimeStart, candidate.SlotTimeEnd) {
			return true, nil
		}
	}
	return false, nil
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/immxrtalbeast/roomrent/internal/repository/model"
	"gorm.io/gorm"
)

// NewPostgresStore wires the gorm-backed repositories. The db must be opened
// with TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
func NewPostgresStore(db *gorm.DB) *Store {
	return &Store{
		Rooms:     NewPostgresRoomRepository(db),
		Posts:     NewPostgresPostRepository(db),
		Requests:  NewPostgresRequestRepository(db),
		Contracts: NewPostgresContractRepository(db),
		Invoices:  NewPostgresInvoiceRepository(db),
	}
}

// Migrate creates or updates every table the store uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}

type PostgresRoomRepository struct {
	db *gorm.DB
}

func NewPostgresRoomRepository(db *gorm.DB) *PostgresRoomRepository {
	return &PostgresRoomRepository{db: db}
}

func (r *PostgresRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if room == nil {
		return errors.New("room is nil")
	}

	return r.db.WithContext(ctx).Create(toModelRoom(room)).Error
}

func (r *PostgresRoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var room model.Room
	err := r.db.WithContext(ctx).First(&room, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}

	return toDomainRoom(&room), nil
}

func (r *PostgresRoomRepository) List(ctx context.Context) ([]*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rooms []model.Room
	if err := r.db.WithContext(ctx).Order("created_at").Find(&rooms).Error; err != nil {
		return nil, err
	}

	result := make([]*domain.Room, 0, len(rooms))
	for i := range rooms {
		result = append(result, toDomainRoom(&rooms[i]))
	}
	return result, nil
}

func (r *PostgresRoomRepository) IncrementOccupancy(ctx context.Context, id uuid.UUID, n int) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := r.db.WithContext(ctx).Model(&model.Room{}).
		Where("id = ? AND current_occupancy + ? <= max_occupancy", id, n).
		Updates(map[string]any{
			"current_occupancy": gorm.Expr("current_occupancy + ?", n),
			"updated_at":        time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrOccupancyExceeded
	}

	return r.GetByID(ctx, id)
}

func (r *PostgresRoomRepository) DecrementOccupancy(ctx context.Context, id uuid.UUID, n int) (*domain.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := r.db.WithContext(ctx).Model(&model.Room{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"current_occupancy": gorm.Expr("CASE WHEN current_occupancy > ? THEN current_occupancy - ? ELSE 0 END", n, n),
			"updated_at":        time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrRoomNotFound
	}

	return r.GetByID(ctx, id)
}

type PostgresPostRepository struct {
	db *gorm.DB
}

func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) Create(ctx context.Context, post *domain.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if post == nil {
		return errors.New("post is nil")
	}

	return r.db.WithContext(ctx).Create(toModelPost(post)).Error
}

func (r *PostgresPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var post model.Post
	err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPostNotFound
		}
		return nil, err
	}

	return toDomainPost(&post), nil
}

func (r *PostgresPostRepository) Update(ctx context.Context, post *domain.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if post == nil {
		return errors.New("post is nil")
	}

	res := r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", post.ID).Updates(map[string]any{
		"type":       string(post.Type),
		"status":     string(post.Status),
		"title":      post.Title,
		"updated_at": post.UpdatedAt.UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostgresPostRepository) List(ctx context.Context, filter PostFilter) ([]*domain.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx).Model(&model.Post{})
	if filter.RoomID != uuid.Nil {
		q = q.Where("room_id = ?", filter.RoomID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}

	var posts []model.Post
	if err := q.Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}

	result := make([]*domain.Post, 0, len(posts))
	for i := range posts {
		result = append(result, toDomainPost(&posts[i]))
	}
	return result, nil
}

type PostgresRequestRepository struct {
	db *gorm.DB
}

func NewPostgresRequestRepository(db *gorm.DB) *PostgresRequestRepository {
	return &PostgresRequestRepository{db: db}
}

func (r *PostgresRequestRepository) Create(ctx context.Context, req *domain.Request) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req == nil {
		return errors.New("request is nil")
	}

	if err := r.db.WithContext(ctx).Create(toModelRequest(req)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrRequestAlreadyOpen
		}
		return err
	}
	return nil
}

func (r *PostgresRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var req model.Request
	err := r.db.WithContext(ctx).First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}

	return toDomainRequest(&req), nil
}

func (r *PostgresRequestRepository) FindOpen(ctx context.Context, tenantID, roomID uuid.UUID) (*domain.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var req model.Request
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND room_id = ? AND is_open = ?", tenantID, roomID, true).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}

	return toDomainRequest(&req), nil
}

func (r *PostgresRequestRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Request, error) {
	return r.list(ctx, "tenant_id = ?", tenantID)
}

func (r *PostgresRequestRepository) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]*domain.Request, error) {
	return r.list(ctx, "room_id = ?", roomID)
}

func (r *PostgresRequestRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Request, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var reqs []model.Request
	if err := r.db.WithContext(ctx).Where(query, args...).Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}

	result := make([]*domain.Request, 0, len(reqs))
	for i := range reqs {
		result = append(result, toDomainRequest(&reqs[i]))
	}
	return result, nil
}

func (r *PostgresRequestRepository) UpdateStatus(ctx context.Context, req *domain.Request, from domain.RequestStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if req == nil {
		return errors.New("request is nil")
	}

	res := r.db.WithContext(ctx).Model(&model.Request{}).
		Where("id = ? AND status = ? AND contract_id IS NULL", req.ID, string(from)).
		Updates(map[string]any{
			"status":               string(req.Status),
			"is_open":              req.IsOpen(),
			"contract_id":          req.ContractID,
			"occupant_approved_by": req.OccupantApprovedBy,
			"decision_reason":      req.DecisionReason,
			"updated_at":           req.UpdatedAt.UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, req.ID); err != nil {
			return err
		}
		return domain.ErrStaleState
	}
	return nil
}

type PostgresContractRepository struct {
	db *gorm.DB
}

func NewPostgresContractRepository(db *gorm.DB) *PostgresContractRepository {
	return &PostgresContractRepository{db: db}
}

func (r *PostgresContractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if contract == nil {
		return errors.New("contract is nil")
	}

	if err := r.db.WithContext(ctx).Create(toModelContract(contract)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyApproved
		}
		return err
	}
	return nil
}

func (r *PostgresContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("contract_id = ?", id).Delete(&model.ContractTenant{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Contract{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrContractNotFound
		}
		return nil
	})
}

func (r *PostgresContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var contract model.Contract
	err := r.db.WithContext(ctx).Preload("Tenants").First(&contract, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrContractNotFound
		}
		return nil, err
	}

	return toDomainContract(&contract), nil
}

func (r *PostgresContractRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]*domain.Contract, error) {
	return r.list(ctx, "id IN (?)", r.db.Model(&model.ContractTenant{}).Select("contract_id").Where("tenant_id = ?", tenantID))
}

func (r *PostgresContractRepository) ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]*domain.Contract, error) {
	return r.list(ctx, "landlord_id = ?", landlordID)
}

func (r *PostgresContractRepository) ListActiveByRoom(ctx context.Context, roomID uuid.UUID) ([]*domain.Contract, error) {
	return r.list(ctx, "room_id = ? AND status = ?", roomID, string(domain.ContractStatusActive))
}

func (r *PostgresContractRepository) ListActive(ctx context.Context) ([]*domain.Contract, error) {
	return r.list(ctx, "status = ?", string(domain.ContractStatusActive))
}

func (r *PostgresContractRepository) ListDueToExpire(ctx context.Context, now time.Time) ([]*domain.Contract, error) {
	return r.list(ctx, "status = ? AND end_date <= ?", string(domain.ContractStatusActive), now.UTC())
}

func (r *PostgresContractRepository) list(ctx context.Context, query any, args ...any) ([]*domain.Contract, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var contracts []model.Contract
	if err := r.db.WithContext(ctx).Preload("Tenants").Where(query, args...).Order("created_at").Find(&contracts).Error; err != nil {
		return nil, err
	}

	result := make([]*domain.Contract, 0, len(contracts))
	for i := range contracts {
		result = append(result, toDomainContract(&contracts[i]))
	}
	return result, nil
}

func (r *PostgresContractRepository) UpdateStatus(ctx context.Context, contract *domain.Contract, from domain.ContractStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if contract == nil {
		return errors.New("contract is nil")
	}

	contractModel := toModelContract(contract)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Contract{}).
			Where("id = ? AND status = ?", contractModel.ID, string(from)).
			Updates(map[string]any{
				"status":             contractModel.Status,
				"termination_reason": contractModel.TerminationReason,
				"terminated_by":      contractModel.TerminatedBy,
				"terminated_at":      contractModel.TerminatedAt,
				"deposit_forfeited":  contractModel.DepositForfeited,
				"updated_at":         contractModel.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&model.Contract{}).Where("id = ?", contractModel.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return domain.ErrContractNotFound
			}
			return domain.ErrStaleState
		}

		if err := tx.Where("contract_id = ?", contractModel.ID).Delete(&model.ContractTenant{}).Error; err != nil {
			return err
		}
		if len(contractModel.Tenants) > 0 {
			if err := tx.Create(&contractModel.Tenants).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

type PostgresInvoiceRepository struct {
	db *gorm.DB
}

func NewPostgresInvoiceRepository(db *gorm.DB) *PostgresInvoiceRepository {
	return &PostgresInvoiceRepository{db: db}
}

func (r *PostgresInvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if invoice == nil {
		return errors.New("invoice is nil")
	}

	if err := r.db.WithContext(ctx).Create(toModelInvoice(invoice)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrInvoicePeriodExists
		}
		return err
	}
	return nil
}

func (r *PostgresInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var invoice model.Invoice
	err := r.db.WithContext(ctx).Preload("Items", orderByPosition).First(&invoice, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, err
	}

	return toDomainInvoice(&invoice), nil
}

func (r *PostgresInvoiceRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]*domain.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var invoices []model.Invoice
	err := r.db.WithContext(ctx).Preload("Items", orderByPosition).
		Where("contract_id = ?", contractID).
		Order("due_date").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}

	result := make([]*domain.Invoice, 0, len(invoices))
	for i := range invoices {
		result = append(result, toDomainInvoice(&invoices[i]))
	}
	return result, nil
}

func (r *PostgresInvoiceRepository) UpdateStatus(ctx context.Context, invoice *domain.Invoice, from domain.InvoiceStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if invoice == nil {
		return errors.New("invoice is nil")
	}

	res := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("id = ? AND status = ?", invoice.ID, string(from)).
		Updates(map[string]any{
			"status":      string(invoice.Status),
			"payment_ref": invoice.PaymentRef,
			"paid_at":     invoice.PaidAt,
			"updated_at":  invoice.UpdatedAt.UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, invoice.ID); err != nil {
			return err
		}
		return domain.ErrStaleState
	}
	return nil
}

func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

package repository

import (
	"github.com/immxrtalbeast/roomrent/internal/domain"
	"github.com/immxrtalbeast/roomrent/internal/repository/model"
)

func toModelRoom(room *domain.Room) *model.Room {
	return &model.Room{
		ID:               room.ID,
		LandlordID:       room.LandlordID,
		Title:            room.Title,
		MaxOccupancy:     room.MaxOccupancy,
		CurrentOccupancy: room.CurrentOccupancy,
		MonthlyRent:      room.MonthlyRent,
		Deposit:          room.Deposit,
		CreatedAt:        room.CreatedAt.UTC(),
		UpdatedAt:        room.UpdatedAt.UTC(),
	}
}

func toDomainRoom(room *model.Room) *domain.Room {
	return &domain.Room{
		ID:               room.ID,
		LandlordID:       room.LandlordID,
		Title:            room.Title,
		MaxOccupancy:     room.MaxOccupancy,
		CurrentOccupancy: room.CurrentOccupancy,
		MonthlyRent:      room.MonthlyRent,
		Deposit:          room.Deposit,
		CreatedAt:        room.CreatedAt.UTC(),
		UpdatedAt:        room.UpdatedAt.UTC(),
	}
}

func toModelPost(post *domain.Post) *model.Post {
	return &model.Post{
		ID:         post.ID,
		RoomID:     post.RoomID,
		LandlordID: post.LandlordID,
		Type:       string(post.Type),
		Status:     string(post.Status),
		Title:      post.Title,
		CreatedAt:  post.CreatedAt.UTC(),
		UpdatedAt:  post.UpdatedAt.UTC(),
	}
}

func toDomainPost(post *model.Post) *domain.Post {
	return &domain.Post{
		ID:         post.ID,
		RoomID:     post.RoomID,
		LandlordID: post.LandlordID,
		Type:       domain.PostType(post.Type),
		Status:     domain.PostStatus(post.Status),
		Title:      post.Title,
		CreatedAt:  post.CreatedAt.UTC(),
		UpdatedAt:  post.UpdatedAt.UTC(),
	}
}

func toModelRequest(req *domain.Request) *model.Request {
	return &model.Request{
		ID:                  req.ID,
		PostID:              req.PostID,
		RoomID:              req.RoomID,
		LandlordID:          req.LandlordID,
		TenantID:            req.TenantID,
		CoTenantIDs:         req.CoTenantIDs,
		Type:                string(req.Type),
		RequestedMoveInDate: req.RequestedMoveInDate.UTC(),
		RequestedDuration:   req.RequestedDuration,
		Message:             req.Message,
		Status:              string(req.Status),
		IsOpen:              req.IsOpen(),
		ContractID:          req.ContractID,
		OccupantApprovedBy:  req.OccupantApprovedBy,
		DecisionReason:      req.DecisionReason,
		CreatedAt:           req.CreatedAt.UTC(),
		UpdatedAt:           req.UpdatedAt.UTC(),
	}
}

func toDomainRequest(req *model.Request) *domain.Request {
	return &domain.Request{
		ID:                  req.ID,
		PostID:              req.PostID,
		RoomID:              req.RoomID,
		LandlordID:          req.LandlordID,
		TenantID:            req.TenantID,
		CoTenantIDs:         req.CoTenantIDs,
		Type:                domain.PostType(req.Type),
		RequestedMoveInDate: req.RequestedMoveInDate.UTC(),
		RequestedDuration:   req.RequestedDuration,
		Message:             req.Message,
		Status:              domain.RequestStatus(req.Status),
		ContractID:          req.ContractID,
		OccupantApprovedBy:  req.OccupantApprovedBy,
		DecisionReason:      req.DecisionReason,
		CreatedAt:           req.CreatedAt.UTC(),
		UpdatedAt:           req.UpdatedAt.UTC(),
	}
}

func toModelContract(c *domain.Contract) *model.Contract {
	tenants := make([]model.ContractTenant, 0, len(c.Tenants))
	for _, t := range c.Tenants {
		tenants = append(tenants, model.ContractTenant{
			ContractID: c.ID,
			TenantID:   t.TenantID,
			MoveInDate: t.MoveInDate.UTC(),
			Status:     string(t.Status),
		})
	}

	return &model.Contract{
		ID:                c.ID,
		RoomID:            c.RoomID,
		PostID:            c.PostID,
		RequestID:         c.RequestID,
		LandlordID:        c.LandlordID,
		Tenants:           tenants,
		StartDate:         c.StartDate.UTC(),
		EndDate:           c.EndDate.UTC(),
		MonthlyRent:       c.MonthlyRent,
		Deposit:           c.Deposit,
		Status:            string(c.Status),
		Type:              string(c.Type),
		TerminationReason: c.TerminationReason,
		TerminatedBy:      c.TerminatedBy,
		TerminatedAt:      c.TerminatedAt,
		DepositForfeited:  c.DepositForfeited,
		CreatedAt:         c.CreatedAt.UTC(),
		UpdatedAt:         c.UpdatedAt.UTC(),
	}
}

func toDomainContract(c *model.Contract) *domain.Contract {
	tenants := make([]domain.ContractTenant, 0, len(c.Tenants))
	for _, t := range c.Tenants {
		tenants = append(tenants, domain.ContractTenant{
			TenantID:   t.TenantID,
			MoveInDate: t.MoveInDate.UTC(),
			Status:     domain.TenantStatus(t.Status),
		})
	}

	return &domain.Contract{
		ID:                c.ID,
		RoomID:            c.RoomID,
		PostID:            c.PostID,
		RequestID:         c.RequestID,
		LandlordID:        c.LandlordID,
		Tenants:           tenants,
		StartDate:         c.StartDate.UTC(),
		EndDate:           c.EndDate.UTC(),
		MonthlyRent:       c.MonthlyRent,
		Deposit:           c.Deposit,
		Status:            domain.ContractStatus(c.Status),
		Type:              domain.ContractType(c.Type),
		TerminationReason: c.TerminationReason,
		TerminatedBy:      c.TerminatedBy,
		TerminatedAt:      c.TerminatedAt,
		DepositForfeited:  c.DepositForfeited,
		CreatedAt:         c.CreatedAt.UTC(),
		UpdatedAt:         c.UpdatedAt.UTC(),
	}
}

func toModelInvoice(inv *domain.Invoice) *model.Invoice {
	items := make([]model.InvoiceItem, 0, len(inv.Items))
	for i, item := range inv.Items {
		items = append(items, model.InvoiceItem{
			InvoiceID:   inv.ID,
			Position:    i,
			Description: item.Description,
			Amount:      item.Amount,
		})
	}

	return &model.Invoice{
		ID:         inv.ID,
		ContractID: inv.ContractID,
		Type:       string(inv.Type),
		Period:     inv.Period,
		Amount:     inv.Amount,
		DueDate:    inv.DueDate.UTC(),
		Status:     string(inv.Status),
		Items:      items,
		PaymentRef: inv.PaymentRef,
		PaidAt:     inv.PaidAt,
		CreatedAt:  inv.CreatedAt.UTC(),
		UpdatedAt:  inv.UpdatedAt.UTC(),
	}
}

func toDomainInvoice(inv *model.Invoice) *domain.Invoice {
	items := make([]domain.InvoiceItem, 0, len(inv.Items))
	for _, item := range inv.Items {
		items = append(items, domain.InvoiceItem{
			Description: item.Description,
			Amount:      item.Amount,
		})
	}

	return &domain.Invoice{
		ID:         inv.ID,
		ContractID: inv.ContractID,
		Type:       domain.InvoiceType(inv.Type),
		Period:     inv.Period,
		Amount:     inv.Amount,
		DueDate:    inv.DueDate.UTC(),
		Status:     domain.InvoiceStatus(inv.Status),
		Items:      items,
		PaymentRef: inv.PaymentRef,
		PaidAt:     inv.PaidAt,
		CreatedAt:  inv.CreatedAt.UTC(),
		UpdatedAt:  inv.UpdatedAt.UTC(),
	}
}

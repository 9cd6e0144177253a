// Package commands contains the write side of the dispatch pipeline: order ingestion,
// packing with identifier allocation, document delivery and the dispatch trigger that
// chains them. Every handler validates its command, then works through a unit of work.
package commands

import (
	"context"

	"fulfillment/internal/core/ports"
)

type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	ShipmentRepoFactory interface {
		ShipmentRepository() ports.ShipmentRepository
	}

	DocumentRepoFactory interface {
		DocumentRepository() ports.DocumentRepository
	}

	SerialCounterFactory interface {
		SerialCounter() ports.SerialCounter
	}

	// OrderUoW is used by ingestion and by the dispatch trigger, which only touch orders.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// PackingUoW spans the packing transaction: shipments, counter increments and the
	// order's packed timestamp commit or roll back together.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   allocator, _ := services.NewContainerIDAllocator(scheme, uow.SerialCounter())
	//   // ... allocate, add shipments, mark the order packed
	//
	//   err = uow.Commit(ctx)
	PackingUoW interface {
		TxManager
		OrderRepoFactory
		ShipmentRepoFactory
		SerialCounterFactory
	}

	PackingUoWFactory interface {
		Create() PackingUoW
	}

	// DeliveryUoW gives access to delivery records. Records are written in autocommit
	// mode so a PENDING attempt is visible before the transfer starts.
	DeliveryUoW interface {
		DocumentRepoFactory
	}

	DeliveryUoWFactory interface {
		Create() DeliveryUoW
	}
)

package cmd

import (
	"fmt"
	"log/slog"

	"fulfillment/internal/adapters/in/amqp"
	httpin "fulfillment/internal/adapters/in/http"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/sftp"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/jobs"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/metrics"

	"gorm.io/gorm"
)

const amqpPrefetch = 8

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	logger     *slog.Logger
	metrics    *metrics.Metrics

	transfer   *sftp.Transfer
	packer     *commands.PackOrderCommandHandler
	deliverer  *commands.DeliverShipmentCommandHandler
	dispatcher *commands.DispatchOrderCommandHandler
}

// NewCompositionRoot wires the pipeline once at startup. Every configuration problem found
// while building the handlers is returned as an *errs.ConfigurationError.
func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger, m *metrics.Metrics) (*CompositionRoot, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, logger),
		logger:     logger,
		metrics:    m,
	}

	scheme, err := services.NewContainerIDScheme(cfg.SSCCExtensionDigit, cfg.SSCCCompanyPrefix)
	if err != nil {
		return nil, err
	}
	carriers, err := shipment.NewCarrierPolicy(cfg.Carriers)
	if err != nil {
		return nil, err
	}
	packageType, err := shipment.ParsePackageType(cfg.DefaultPackageType)
	if err != nil {
		return nil, errs.NewConfigurationError("DEFAULT_PACKAGE_TYPE", err.Error())
	}

	c.transfer, err = sftp.NewTransfer(sftp.Config{
		Host:                  cfg.SFTPHost,
		Port:                  cfg.SFTPPort,
		User:                  cfg.SFTPUser,
		Password:              cfg.SFTPPassword,
		PrivateKeyPath:        cfg.SFTPPrivateKeyPath,
		KnownHostsPath:        cfg.SFTPKnownHostsPath,
		InsecureIgnoreHostKey: cfg.SFTPInsecureIgnoreHostKey,
		DialTimeout:           cfg.SFTPTimeout,
	}, logger, m)
	if err != nil {
		return nil, fmt.Errorf("sftp transfer: %w", err)
	}

	var packingUoW commands.PackingUoWFactory = FuncPackingUoWFactory(func() commands.PackingUoW {
		return c.uowFactory.Create()
	})
	c.packer, err = commands.NewPackOrderCommandHandler(packingUoW, scheme, services.NewPackingEngine(), m)
	if err != nil {
		return nil, err
	}

	var deliveryUoW commands.DeliveryUoWFactory = FuncDeliveryUoWFactory(func() commands.DeliveryUoW {
		return c.uowFactory.Create()
	})
	c.deliverer, err = commands.NewDeliverShipmentCommandHandler(
		deliveryUoW,
		c.transfer,
		services.NewDispatchDocumentBuilder(),
		commands.DeliveryConfig{
			SupplierID: cfg.SupplierID,
			Directory:  cfg.SFTPOutgoingDir,
			Timeout:    cfg.SFTPTimeout,
		},
		m,
	)
	if err != nil {
		return nil, err
	}

	c.dispatcher, err = commands.NewDispatchOrderCommandHandler(
		c.orderUoWFactory(),
		c.packer,
		c.deliverer,
		commands.DispatchDefaults{
			Capacity:    cfg.DefaultCapacity,
			AllowSplit:  cfg.DefaultAllowSplit,
			PackageType: packageType,
			Carriers:    carriers,
		},
		logger,
	)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() *commands.CreateOrderCommandHandler {
	h := commands.NewCreateOrderCommandHandler(c.orderUoWFactory())
	return &h
}

func (c *CompositionRoot) CreateGetOrderShipmentsQueryHandler() queries.GetOrderShipmentsQueryHandler {
	return queries.NewGetOrderShipmentsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderDocumentsQueryHandler() queries.GetOrderDocumentsQueryHandler {
	return queries.NewGetOrderDocumentsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrdersAwaitingDispatchQueryHandler() queries.GetOrdersAwaitingDispatchQueryHandler {
	return queries.NewGetOrdersAwaitingDispatchQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrdersWithFailedDeliveriesQueryHandler() queries.GetOrdersWithFailedDeliveriesQueryHandler {
	return queries.NewGetOrdersWithFailedDeliveriesQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetRejectedOrdersQueryHandler() queries.GetRejectedOrdersQueryHandler {
	return queries.NewGetRejectedOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.dispatcher,
		c.CreateGetOrderShipmentsQueryHandler(),
		c.CreateGetOrderDocumentsQueryHandler(),
		c.CreateGetRejectedOrdersQueryHandler(),
	)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	dispatchJob := jobs.NewDispatchReadyOrdersJob(
		c.CreateGetOrdersAwaitingDispatchQueryHandler(),
		c.dispatcher,
		c.cfg.DispatchSchedule,
		c.cfg.SweepBatchSize,
		c.logger,
		c.metrics,
	)
	retryJob := jobs.NewRetryFailedDeliveriesJob(
		c.CreateGetOrdersWithFailedDeliveriesQueryHandler(),
		c.dispatcher,
		c.cfg.RetrySchedule,
		c.cfg.SweepBatchSize,
		c.cfg.StalePendingAfter,
		c.logger,
		c.metrics,
	)
	return jobs.NewJobManager(dispatchJob, retryJob)
}

// CreateOrderReadyConsumer returns nil when no broker is configured.
func (c *CompositionRoot) CreateOrderReadyConsumer() (*amqp.Consumer, error) {
	if !c.cfg.AMQPEnabled() {
		return nil, nil
	}
	return amqp.NewConsumer(amqp.Config{
		URL:      c.cfg.AMQPURL,
		Exchange: c.cfg.AMQPExchange,
		Queue:    c.cfg.AMQPQueue,
		Prefetch: amqpPrefetch,
	}, c.dispatcher, c.logger, c.metrics)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncPackingUoWFactory func() commands.PackingUoW

func (f FuncPackingUoWFactory) Create() commands.PackingUoW {
	return f()
}

type FuncDeliveryUoWFactory func() commands.DeliveryUoW

func (f FuncDeliveryUoWFactory) Create() commands.DeliveryUoW {
	return f()
}

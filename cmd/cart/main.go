package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fjod/go_cart/cartsync/internal/catalog"
	"github.com/fjod/go_cart/cartsync/internal/config"
	"github.com/fjod/go_cart/cartsync/internal/logger"
	"github.com/fjod/go_cart/cartsync/internal/metrics"
	"github.com/fjod/go_cart/cartsync/internal/notify"
	"github.com/fjod/go_cart/cartsync/internal/service"
	"github.com/fjod/go_cart/cartsync/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const usage = `usage: cart [flags] <command>

commands:
  show                     print the cart
  add <product-id>         add one unit of a product
  remove <product-id>      remove a product line
  update <product-id> <n>  request a new amount for a product line
`

var errUsage = errors.New("invalid arguments")

func main() {
	os.Exit(execute())
}

// execute wires the session dependencies and returns the process exit code
func execute() int {
	cfg := config.Load()

	fs := flag.NewFlagSet("cart", flag.ContinueOnError)
	fs.StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "store driver: memory|redis|mongo|sqlite|postgres")
	fs.StringVar(&cfg.CatalogURL, "catalog", cfg.CatalogURL, "catalog API base URL")
	fs.StringVar(&cfg.CartKey, "key", cfg.CartKey, "key the cart is stored under")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		return 2
	}

	log := logger.New(logger.Options{Service: "cart", Env: cfg.AppEnv, Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := store.Open(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to open cart store")
		return 1
	}
	defer backend.Close()

	notifier, closeNotifier := buildNotifier(cfg, log)
	defer closeNotifier()

	client := catalog.NewClient(cfg.CatalogURL, cfg.HTTPTimeout)

	err = run(ctx, cfg, backend, client, notifier, log, fs.Args(), os.Stdout)
	switch {
	case errors.Is(err, errUsage):
		fs.Usage()
		return 2
	case err != nil:
		return 1
	}
	return 0
}

func buildNotifier(cfg config.Config, log logrus.FieldLogger) (notify.Notifier, func()) {
	logNotifier := notify.NewLogNotifier(log)
	if len(cfg.KafkaBrokers) == 0 {
		return logNotifier, func() {}
	}

	kafkaNotifier := notify.NewKafkaNotifier(log, cfg.NotifyTopic, cfg.KafkaBrokers...)
	return notify.Multi(logNotifier, kafkaNotifier), func() {
		if err := kafkaNotifier.Close(); err != nil {
			log.WithError(err).Warn("failed to close kafka writer")
		}
	}
}

// run executes one command against a freshly initialized cart session and prints the
// resulting cart. The session is always flushed before returning.
func run(
	ctx context.Context,
	cfg config.Config,
	kv store.KeyValueStore,
	client interface {
		catalog.StockService
		catalog.ProductCatalog
	},
	notifier notify.Notifier,
	log logrus.FieldLogger,
	args []string,
	out io.Writer) (err error) {

	if len(args) == 0 {
		return errUsage
	}

	cart := service.NewCartStore(kv, client, client, notifier,
		service.WithCartKey(cfg.CartKey),
		service.WithLogger(log),
		service.WithFetchTimeout(cfg.FetchTimeout),
		service.WithMetrics(metrics.NewCartMetrics(prometheus.NewRegistry())),
	)
	cart.Initialize(ctx)
	defer func() {
		if closeErr := cart.Close(ctx); closeErr != nil {
			log.WithError(closeErr).Error("failed to flush cart")
			err = errors.Join(err, closeErr)
		}
	}()

	switch cmd := args[0]; cmd {
	case "show":
		if len(args) != 1 {
			return errUsage
		}
	case "add", "remove":
		if len(args) != 2 {
			return errUsage
		}
		id, parseErr := strconv.ParseInt(args[1], 10, 64)
		if parseErr != nil {
			return errUsage
		}
		if cmd == "add" {
			err = cart.AddProduct(ctx, id)
		} else {
			err = cart.RemoveProduct(ctx, id)
		}
	case "update":
		if len(args) != 3 {
			return errUsage
		}
		id, idErr := strconv.ParseInt(args[1], 10, 64)
		amount, amountErr := strconv.Atoi(args[2])
		if idErr != nil || amountErr != nil {
			return errUsage
		}
		err = cart.UpdateProductAmount(ctx, service.UpdateProductAmount{ProductID: id, Amount: amount})
	default:
		return errUsage
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(cart.Cart()); encErr != nil {
		return errors.Join(err, encErr)
	}
	return err
}

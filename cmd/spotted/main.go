package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
	"github.com/spottedbot/spotted"
	"github.com/spottedbot/spotted/config"
	"github.com/spottedbot/spotted/store"
	"github.com/spottedbot/spotted/store/datastoredb"
	"github.com/spottedbot/spotted/store/inmemorydb"
	"github.com/spottedbot/spotted/web"
	"google.golang.org/api/option"
)

const name = "spotted"

func main() {
	configurationPath := flag.String("config", "", "The path to the configuration file")
	flag.Parse()

	v := config.NewViperWithDefaults()
	v.SetEnvPrefix(name)
	v.AutomaticEnv()

	if *configurationPath != "" {
		v.SetConfigFile(*configurationPath)
		if err := v.ReadInConfig(); err != nil {
			log.Fatalf("Error loading configuration file [%s]: %v", *configurationPath, err)
		}
	}

	if v.GetString(config.TokenKey) == "" {
		log.Fatalf("Missing slack token: set [%s] in the configuration file or via the SPOTTED_TOKEN environment variable", config.TokenKey)
	}

	storer, err := newScoreStorer(v)
	if err != nil {
		log.Fatalf("Error opening score storage: %v", err)
	}
	defer storer.Close()

	webServer := web.NewServer(v.GetString(config.HTTPAddrKey), storer)
	go func() {
		if werr := webServer.Start(); werr != nil {
			log.Printf("Web server stopped: %v", werr)
		}
	}()

	bot, err := spotted.New(name, v, storer)
	if err != nil {
		log.Fatalf("Error initializing %s: %v", name, err)
	}

	err = bot.Run()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = webServer.Shutdown(shutdownCtx)

	if err != nil {
		log.Fatal(err)
	}
}

// newScoreStorer opens the configured storage backend, wrapped in the
// in-memory write-through layer so the read side never queries the backend
func newScoreStorer(v *viper.Viper) (storer store.ScoreStorer, err error) {
	var backend store.ScoreStorer

	switch v.GetString(config.StoreBackendKey) {
	case config.BackendLevelDB:
		backend, err = store.NewLevelDB(name, v.GetString(config.StoragePathKey))

	case config.BackendDatastore:
		opts := make([]option.ClientOption, 0, 1)
		if credentialsFile := v.GetString(config.GCloudCredentialsFileKey); credentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(credentialsFile))
		}

		backend, err = datastoredb.NewDatastoreDB(name, v.GetString(config.GCloudProjectIDKey), opts...)

	default:
		return nil, fmt.Errorf("unknown store backend [%s]", v.GetString(config.StoreBackendKey))
	}

	if err != nil {
		return nil, err
	}

	return inmemorydb.New(backend)
}

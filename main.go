package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"

	"github.com/Shivanshu9120/Messenger-backend/config"
	"github.com/Shivanshu9120/Messenger-backend/database"
	"github.com/Shivanshu9120/Messenger-backend/hub"

	_ "github.com/go-sql-driver/mysql"
)

func handleInterrupt(hub *hub.Hub, sc chan os.Signal) {
	<-sc
	hub.Close()
	os.Exit(0)
}

func buildStore(cfg *config.Config) (database.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverMysql:
		engine, err := database.InitMysqlDb(cfg.Database.Source)
		if err != nil {
			return nil, err
		}
		return database.NewDbStore(engine)
	case config.DriverMongo:
		db, err := database.InitMongoDb(cfg.Database.Source, cfg.Database.Name)
		if err != nil {
			return nil, err
		}
		return database.NewMongoStore(db), nil
	default:
		return database.NewMemStore(), nil
	}
}

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())

	confPath := flag.String("c", "", "path to conf.ini")
	flag.Parse()

	cfg, err := config.LoadConfig(*confPath)
	if err != nil {
		log.Panicln(err)
	}

	store, err := buildStore(cfg)
	if err != nil {
		log.Panicln(err)
	}

	var online database.OnlineCache
	if cfg.Redis.Enable {
		redis := database.InitRedis(cfg.Redis.IP, cfg.Redis.Port, cfg.Redis.Password)
		if _, err := redis.Ping().Result(); err != nil {
			log.Panicln(err)
		}
		online = database.NewRedisOnlineCache(redis)
	} else {
		online = database.NewMemOnlineCache()
	}

	hub, err := hub.NewHub(cfg, store, online)
	if err != nil {
		log.Panicln(err)
	}

	// listen sys.exit
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, os.Interrupt)
	go handleInterrupt(hub, sc)

	if err := hub.Run(); err != nil {
		log.Panicln(err)
	}
}

package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/pion/mdns/v2"
	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"officehub/auth"
	"officehub/internal/bridge"
	"officehub/internal/config"
	"officehub/internal/engine"
	"officehub/internal/mqtt"
	"officehub/internal/parking"
	"officehub/internal/redis"
	"officehub/internal/rooms"
	"officehub/internal/scheduler"
	"officehub/internal/store"
	"officehub/internal/taskqueue"
	"officehub/internal/web"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	var st store.Store
	switch cfg.StoreDriver {
	case "memory":
		st = store.NewMemory(cfg.ParkingSpotCount)
	default:
		pg, err := store.NewPostgres(ctx, cfg.DBURL, cfg.ParkingSpotCount)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		st = pg
	}
	defer st.Close()

	if err := st.Init(ctx); err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}

	redisClient := redis.NewRedisClient(cfg.RedisAddr)

	mqttClient, err := mqtt.NewMQTTClient(cfg.MQTTBroker, cfg.MQTTClientID)
	if err != nil {
		log.Printf("Failed to connect to MQTT, continuing without broker: %v", err)
		mqttClient = nil
	}

	eng := engine.NewEngine(st, mqttClient)
	if err := eng.Start(); err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}

	parkingService := parking.NewService(st, eng)
	roomService := rooms.NewService(st)
	authModule := auth.NewAuthModule(st, redisClient, eng, cfg.JWTSecret)

	taskqueue.SetGlobalInstances(eng, roomService)
	go taskqueue.StartWorkers(cfg.RedisAddr)

	sched := scheduler.NewScheduler()
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	webServer := web.NewWebServer(st, authModule, eng, parkingService, roomService)
	go func() {
		if err := webServer.Start(cfg.ListenAddr); err != nil {
			log.Fatalf("Web server stopped: %v", err)
		}
	}()

	if cfg.MDNSLocalName != "" {
		go startMDNSServer(cfg.MDNSLocalName)
	}

	if cfg.RemoteAccessEnabled {
		go bridge.Start(bridge.Config{
			PublicWS: cfg.RemoteWS,
			LocalURL: "http://127.0.0.1" + cfg.ListenAddr,
			AgentID:  cfg.AgentID,
		})
	} else {
		log.Println("Remote access bridge is disabled")
	}

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	eng.Stop()
	sched.Stop()
	taskqueue.StopWorkers()
	log.Println("Shutdown complete")
}

func startMDNSServer(localName string) {
	addr4, err := net.ResolveUDPAddr("udp4", mdns.DefaultAddressIPv4)
	if err != nil {
		log.Println("Failed to resolve UDP4 address for mDNS:", err)
		return
	}

	addr6, err := net.ResolveUDPAddr("udp6", mdns.DefaultAddressIPv6)
	if err != nil {
		log.Println("Failed to resolve UDP6 address for mDNS:", err)
		return
	}

	l4, err := net.ListenUDP("udp4", addr4)
	if err != nil {
		log.Println("Failed to listen on UDP4 for mDNS:", err)
		return
	}

	l6, err := net.ListenUDP("udp6", addr6)
	if err != nil {
		log.Println("Failed to listen on UDP6 for mDNS:", err)
		return
	}

	_, err = mdns.Server(ipv4.NewPacketConn(l4), ipv6.NewPacketConn(l6), &mdns.Config{
		LocalNames: []string{localName},
	})
	if err != nil {
		log.Println("Failed to start mDNS server:", err)
		return
	}

	log.Printf("mDNS server started, announcing %s", localName)
	select {}
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	stGrpc "liyu1981.xyz/safetrack-monitor-service/pkg/grpc"
	"liyu1981.xyz/safetrack-monitor-service/pkg/models"
)

var maxDevices int = 1000
var rounds int = 20
var simHostPort string = "127.0.0.1:1090"
var httpHostPort string = "127.0.0.1:1080"
var grpcHostPort string = "127.0.0.1:10801"

// the server under test must be started with the same admin account
var adminUser string = envOr("SAFETRACK_ADMIN_USER", "admin")
var adminPass string = envOr("SAFETRACK_ADMIN_PASS", "admin")

var grpcClient *stGrpc.AlertServiceClient
var httpClient *http.Client

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
var rndMu sync.Mutex

// simulator serves the telemetry snapshot the service polls.
type simulator struct {
	mu       sync.RWMutex
	readings []models.DeviceReading
}

func (s *simulator) tick(deviceIDs []string) {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	readings := make([]models.DeviceReading, len(deviceIDs))
	for i, id := range deviceIDs {
		readings[i] = models.DeviceReading{
			ID:          id,
			Timestamp:   now,
			Location:    fmt.Sprintf("Zone %d", i%20),
			Latitude:    rndFloat64(-90, 90, 6),
			Longitude:   rndFloat64(-180, 180, 6),
			PanicStatus: chance(2),
			FallStatus:  chance(3),
			Heartbeat:   int(rndFloat64(55, 140, 0)),
		}
	}
	s.mu.Lock()
	s.readings = readings
	s.mu.Unlock()
}

func (s *simulator) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.readings)
}

func main() {
	deviceIDs := make([]string, maxDevices)
	for i := 0; i < maxDevices; i++ {
		deviceIDs[i] = uuid.NewString()
	}
	fmt.Printf("generated %v device IDs\n", maxDevices)

	sim := &simulator{}
	sim.tick(deviceIDs)
	mux := http.NewServeMux()
	mux.Handle("/telemetry", sim)
	go func() {
		if err := http.ListenAndServe(simHostPort, mux); err != nil {
			log.Fatal("telemetry simulator failed:", err)
		}
	}()
	fmt.Printf("telemetry simulator on http://%s/telemetry\n", simHostPort)

	httpClient = &http.Client{Timeout: 30 * time.Second}

	resp, err := httpClient.Get(fmt.Sprintf("http://%s/healthz", httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	login()
	fmt.Printf("http server verified\n")

	conn, err := grpc.NewClient(grpcHostPort,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithPerRPCCredentials(stGrpc.Credentials{User: adminUser, Pass: adminPass}),
	)
	if err != nil {
		log.Fatal("Failed to connect to gRPC server:", err)
	}
	defer conn.Close()
	grpcClient = stGrpc.NewAlertServiceClient(conn)

	fmt.Printf("gRPC server connected\n")

	var startTime time.Time
	var usedTime time.Duration

	startTime = time.Now()
	for round := 0; round < rounds; round++ {
		sim.tick(deviceIDs)
		post("/refresh", nil)
		fmt.Printf("\rpolled round %v", round+1)
	}
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\rpolled %v rounds of %v devices: used time=%v seconds, throughput=%v readings/second\n",
		rounds, maxDevices, usedTime.Seconds(), float64(rounds*maxDevices)/usedTime.Seconds(),
	)

	startTime = time.Now()
	wg := sync.WaitGroup{}
	for i := 0; i < maxDevices; i++ {
		i := i
		wg.Add(1)
		go func() {
			doAction(deviceIDs[i])
			wg.Done()
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\n\rdid actions for %v devices: used time=%v seconds, throughput=%v action/second\n",
		maxDevices, usedTime.Seconds(), float64(maxDevices*3)/usedTime.Seconds(),
	)

	stats, err := grpcClient.Stats(context.Background())
	if err != nil {
		log.Fatal("stats failed:", err)
	}
	fmt.Printf("active=%v archived=%v dropped=%v emailsSent=%v\n",
		stats.ActiveAlerts, stats.ArchivedAlerts, stats.DroppedAlerts, stats.EmailsSent)
}

func chance(percent int32) bool {
	rndMu.Lock()
	defer rndMu.Unlock()
	return rnd.Int31n(100) < percent
}

func flipCoin() bool {
	return chance(50)
}

func rndFloat64(min, max float64, decimal int) float64 {
	rndMu.Lock()
	val := min + rnd.Float64()*(max-min)
	rndMu.Unlock()
	multiplier := float64(math.Pow10(decimal))
	return float64(math.Round(float64(val)*float64(multiplier))) / multiplier
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func login() {
	payload := map[string]string{"username": adminUser, "password": adminPass}
	if code := post("/login", payload); code != http.StatusOK {
		log.Fatalf("login failed with status %v", code)
	}
}

func post(path string, payload any) int {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	resp, err := httpClient.Post(fmt.Sprintf("http://%s%s", httpHostPort, path), "application/json", &body)
	if err != nil {
		fmt.Printf("\nerror: %v\n", err)
		return 0
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func doAction(deviceID string) {
	actions := []func(){
		genListAlertsAction(deviceID),
		genHistoryAction(deviceID),
		genStatsAction(),
	}
	actionNames := []string{
		"ListAlerts",
		"History",
		"Stats",
	}
	rndMu.Lock()
	rnd.Shuffle(len(actions), func(i, j int) {
		actions[i], actions[j] = actions[j], actions[i]
		actionNames[i], actionNames[j] = actionNames[j], actionNames[i]
	})
	rndMu.Unlock()
	for index, action := range actions {
		action()
		fmt.Printf("\rexecuted action %v for device %v", actionNames[index], deviceID)
	}
}

func get(path string) {
	resp, err := httpClient.Get(fmt.Sprintf("http://%s%s", httpHostPort, path))
	if err != nil {
		fmt.Printf("\nerror: %v\n", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("\nresponse status code != 200: %v\n", resp.StatusCode)
	}
}

func genListAlertsAction(deviceID string) func() {
	return func() {
		if flipCoin() {
			get("/alerts?device=" + deviceID)
		} else if _, err := grpcClient.ListActive(context.Background()); err != nil {
			fmt.Printf("\nerror: %v\n", err)
		}
	}
}

func genHistoryAction(deviceID string) func() {
	return func() {
		get("/devices/" + deviceID + "/history")
	}
}

func genStatsAction() func() {
	return func() {
		if flipCoin() {
			get("/stats")
		} else if _, err := grpcClient.Stats(context.Background()); err != nil {
			fmt.Printf("\nerror: %v\n", err)
		}
	}
}

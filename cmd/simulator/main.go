package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

// Vehicle is the creation payload sent to the API.
type Vehicle struct {
	ChassisNumber string `json:"chassis_number"`
	Model         string `json:"model"`
	Customer      string `json:"customer"`
}

// Event is a timeline transition sent to the API.
type Event struct {
	EventType string `json:"event_type"`
	Timestamp string `json:"timestamp,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

var (
	vehicleModels = []string{"Actros", "Arocs", "Atego", "Tourismo", "Travego", "Conecto"}
	customers     = []string{"Filo A.Ş.", "Lojistik Ltd.", "Belediye", "Turizm Taşımacılık"}
	reworkReasons = []string{"paint defect", "wiring harness", "door alignment", "brake test failed"}
)

var httpClient = &http.Client{Timeout: 10 * time.Second}

func postJSON(url string, v interface{}) (*http.Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return httpClient.Do(req)
}

func chassisNumber(rng *rand.Rand) string {
	const alphabet = "ABCDEFGHJKLMNPRSTUVWXYZ0123456789"
	b := make([]byte, 17)
	for i := range b {
		b[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(b)
}

func createVehicle(apiURL string, rng *rand.Rand) (string, error) {
	vehicle := Vehicle{
		ChassisNumber: chassisNumber(rng),
		Model:         vehicleModels[rng.Intn(len(vehicleModels))],
		Customer:      customers[rng.Intn(len(customers))],
	}

	resp, err := postJSON(apiURL+"/vehicles", vehicle)
	if err != nil {
		return "", fmt.Errorf("failed to create vehicle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("vehicle creation failed with status: %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	id, ok := result["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("invalid vehicle ID in response")
	}

	log.WithFields(log.Fields{
		"vehicle_id": id,
		"chassis":    vehicle.ChassisNumber,
		"model":      vehicle.Model,
	}).Info("Created vehicle")
	return id, nil
}

// planRoute returns the sequence of events a vehicle goes through on the
// quality line. Roughly a third of vehicles need rework and a few go to R&D.
func planRoute(rng *rand.Rand) []Event {
	route := []Event{{EventType: "quality_entry"}, {EventType: "control_start"}}
	if rng.Intn(10) == 0 {
		route = append(route,
			Event{EventType: "control_end"},
			Event{EventType: "arge_sent", Notes: "engineering review"},
			Event{EventType: "arge_returned"},
			Event{EventType: "control_start"},
		)
	}
	for rng.Intn(3) == 0 {
		route = append(route,
			Event{EventType: "rework_start", Notes: reworkReasons[rng.Intn(len(reworkReasons))]},
			Event{EventType: "rework_end"},
		)
	}
	return append(route,
		Event{EventType: "control_end"},
		Event{EventType: "waiting_for_shipping_info"},
		Event{EventType: "ready_to_ship"},
		Event{EventType: "shipped"},
	)
}

func sendEvent(apiURL, vehicleID string, e Event) error {
	resp, err := postJSON(fmt.Sprintf("%s/vehicles/%s/events", apiURL, vehicleID), e)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("event %s rejected with status: %d", e.EventType, resp.StatusCode)
	}
	log.WithFields(log.Fields{"vehicle_id": vehicleID, "event_type": e.EventType}).Info("Sent event")
	return nil
}

func simulateVehicle(ctx context.Context, apiURL, vehicleID string, route []Event, interval time.Duration, rng *rand.Rand) {
	for _, e := range route {
		wait := interval + time.Duration(rng.Int63n(int64(interval)))
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		if err := sendEvent(apiURL, vehicleID, e); err != nil {
			log.WithError(err).WithField("vehicle_id", vehicleID).Error("Failed to send event")
			return
		}
	}
	log.WithField("vehicle_id", vehicleID).Info("Vehicle shipped")
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			return n
		}
	}
	return def
}

func main() {
	fleetSize := getenvInt("FLEET_SIZE", 10)
	interval := time.Duration(getenvInt("SIM_TICK_SECONDS", 2)) * time.Second

	apiURL := os.Getenv("API_BASE_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080/api"
	}

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"api_url":    apiURL,
		"interval":   interval,
	}).Info("Starting quality line simulation")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed := time.Now().UnixNano()
	var wg sync.WaitGroup
	created := 0
	for i := 0; i < fleetSize; i++ {
		rng := rand.New(rand.NewSource(seed + int64(i)))
		id, err := createVehicle(apiURL, rng)
		if err != nil {
			log.WithError(err).Error("Failed to create vehicle")
			continue
		}
		created++
		wg.Add(1)
		go func() {
			defer wg.Done()
			simulateVehicle(ctx, apiURL, id, planRoute(rng), interval, rng)
		}()
	}

	log.WithField("created_vehicles", created).Info("Vehicle creation completed")
	if created == 0 {
		log.Error("No vehicles created. Ensure the API is reachable. Exiting.")
		return
	}
	wg.Wait()
	log.Info("Quality line simulation finished")
}

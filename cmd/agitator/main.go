// Package main - agitator
// Load generator: many concurrent operators playing random routes over WebSocket.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/outpost31/simulator/internal/network"
)

// Config for the agitator
type Config struct {
	ServerURL      string
	NumClients     int
	ActionInterval time.Duration
	TestDuration   time.Duration
	Output         string
}

// Stats tracks performance metrics
type Stats struct {
	MessagesSent     int64
	MessagesReceived int64
	Errors           int64
	Endings          int64
	Rejected         int64
	Latencies        []time.Duration
	mu               sync.Mutex
}

func (s *Stats) addLatency(d time.Duration) {
	s.mu.Lock()
	s.Latencies = append(s.Latencies, d)
	s.mu.Unlock()
}

func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "WebSocket server URL")
	numClients := flag.Int("clients", 50, "Number of concurrent operators")
	interval := flag.Duration("interval", 200*time.Millisecond, "Command interval per operator")
	duration := flag.Duration("duration", 60*time.Second, "Test duration")
	output := flag.String("out", "stress_test_results.json", "Where to write the JSON results")
	flag.Parse()

	config := Config{
		ServerURL:      *serverURL,
		NumClients:     *numClients,
		ActionInterval: *interval,
		TestDuration:   *duration,
		Output:         *output,
	}

	fmt.Println("=========================================")
	fmt.Println("OUTPOST 31 AGITATOR - Stress Test Tool")
	fmt.Println("=========================================")
	fmt.Printf("Server: %s\n", config.ServerURL)
	fmt.Printf("Operators: %d\n", config.NumClients)
	fmt.Printf("Interval: %v\n", config.ActionInterval)
	fmt.Printf("Duration: %v\n", config.TestDuration)
	fmt.Println("=========================================")

	ctx, cancel := context.WithTimeout(context.Background(), config.TestDuration)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupt received, stopping...")
		cancel()
	}()

	stats := runStressTest(ctx, config)
	printResults(stats, config)
}

func runStressTest(ctx context.Context, config Config) *Stats {
	stats := &Stats{
		Latencies: make([]time.Duration, 0, 10000),
	}

	var wg sync.WaitGroup

	fmt.Println("\nStarting operators...")

	for i := 0; i < config.NumClients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			runClient(ctx, clientID, config, stats)
		}(i)

		// Stagger client starts to avoid thundering herd
		time.Sleep(10 * time.Millisecond)
	}

	fmt.Printf("All %d operators started\n\n", config.NumClients)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sent := atomic.LoadInt64(&stats.MessagesSent)
				recv := atomic.LoadInt64(&stats.MessagesReceived)
				errs := atomic.LoadInt64(&stats.Errors)
				ends := atomic.LoadInt64(&stats.Endings)
				fmt.Printf("Progress: Sent=%d Recv=%d Errors=%d Endings=%d\n", sent, recv, errs, ends)
			}
		}
	}()

	wg.Wait()
	return stats
}

type inbound struct {
	Type    network.MessageType `json:"type"`
	Payload json.RawMessage     `json:"payload"`
}

func runClient(ctx context.Context, clientID int, config Config, stats *Stats) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, config.ServerURL, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusServiceUnavailable {
			atomic.AddInt64(&stats.Rejected, 1)
			return
		}
		log.Printf("Operator %d: Connection failed: %v", clientID, err)
		atomic.AddInt64(&stats.Errors, 1)
		return
	}
	defer conn.Close()

	// choices carries the choice count of every STATE frame to the sender.
	choices := make(chan int, 16)

	go func() {
		defer close(choices)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&stats.MessagesReceived, 1)

			var msg inbound
			if err := json.Unmarshal(raw, &msg); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				continue
			}
			switch msg.Type {
			case network.MsgTypeState:
				var st network.StatePayload
				if err := json.Unmarshal(msg.Payload, &st); err != nil {
					atomic.AddInt64(&stats.Errors, 1)
					continue
				}
				if st.View.Ending {
					atomic.AddInt64(&stats.Endings, 1)
				}
				select {
				case choices <- len(st.View.Choices):
				default:
				}
			case network.MsgTypeError:
				atomic.AddInt64(&stats.Errors, 1)
			}
		}
	}()

	ticker := time.NewTicker(config.ActionInterval)
	defer ticker.Stop()

	available := 0
	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-choices:
			if !ok {
				return
			}
			available = n
			if !pending.IsZero() {
				stats.addLatency(time.Since(pending))
				pending = time.Time{}
			}
		case <-ticker.C:
			cmd := randomCommand(available)
			if err := conn.WriteJSON(cmd); err != nil {
				atomic.AddInt64(&stats.Errors, 1)
				return
			}
			atomic.AddInt64(&stats.MessagesSent, 1)
			if cmd.Type != network.CmdMeters && pending.IsZero() {
				pending = time.Now()
			}
		}
	}
}

// randomCommand mostly picks a choice; now and then it polls meters or
// flips the rigor setting.
func randomCommand(available int) network.Command {
	roll := rand.IntN(20)
	switch {
	case roll == 0:
		return network.Command{Type: network.CmdMeters}
	case roll == 1:
		dir := 1
		if rand.IntN(2) == 0 {
			dir = -1
		}
		return network.Command{Type: network.CmdDifficulty, Dir: dir}
	case available == 0:
		return network.Command{Type: network.CmdRender}
	default:
		return network.Command{Type: network.CmdChoose, Index: rand.IntN(available)}
	}
}

func printResults(stats *Stats, config Config) {
	fmt.Println("\n=========================================")
	fmt.Println("STRESS TEST RESULTS")
	fmt.Println("=========================================")

	sent := atomic.LoadInt64(&stats.MessagesSent)
	recv := atomic.LoadInt64(&stats.MessagesReceived)
	errs := atomic.LoadInt64(&stats.Errors)
	ends := atomic.LoadInt64(&stats.Endings)
	rejected := atomic.LoadInt64(&stats.Rejected)

	fmt.Printf("Commands Sent:     %d\n", sent)
	fmt.Printf("Frames Received:   %d\n", recv)
	fmt.Printf("Endings Reached:   %d\n", ends)
	fmt.Printf("Rejected (cap):    %d\n", rejected)
	fmt.Printf("Errors:            %d\n", errs)
	fmt.Printf("Error Rate:        %.2f%%\n", float64(errs)/float64(sent+1)*100)

	throughput := float64(sent) / config.TestDuration.Seconds()
	fmt.Printf("Throughput:        %.2f cmd/sec\n", throughput)

	stats.mu.Lock()
	latencies := stats.Latencies
	stats.mu.Unlock()

	if len(latencies) > 0 {
		var total time.Duration
		var min, max time.Duration = latencies[0], latencies[0]

		for _, l := range latencies {
			total += l
			if l < min {
				min = l
			}
			if l > max {
				max = l
			}
		}

		avg := total / time.Duration(len(latencies))

		fmt.Printf("\nRound trip:\n")
		fmt.Printf("  Min: %v\n", min)
		fmt.Printf("  Avg: %v\n", avg)
		fmt.Printf("  Max: %v\n", max)
	}

	fmt.Println("\n-----------------------------------------")
	if errs == 0 && rejected == 0 {
		fmt.Println("TEST PASSED: Server handled the load")
	} else if float64(errs)/float64(sent+1) < 0.05 {
		fmt.Println("TEST WARNING: Some errors or rejections detected")
	} else {
		fmt.Println("TEST FAILED: High error rate")
	}
	fmt.Println("=========================================")

	results := map[string]interface{}{
		"commands_sent":      sent,
		"frames_received":    recv,
		"endings":            ends,
		"rejected":           rejected,
		"errors":             errs,
		"throughput_per_sec": throughput,
		"config": map[string]interface{}{
			"operators": config.NumClients,
			"interval":  config.ActionInterval.String(),
			"duration":  config.TestDuration.String(),
		},
	}

	jsonData, _ := json.MarshalIndent(results, "", "  ")
	if err := os.WriteFile(config.Output, jsonData, 0644); err != nil {
		log.Printf("Could not write results: %v", err)
		return
	}
	fmt.Println("\nResults saved to " + config.Output)
}

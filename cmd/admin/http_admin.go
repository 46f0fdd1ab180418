package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"stellarforge.ai/internal/sim/game"
)

// stateCmd queries the running server's loopback admin endpoint and
// prints a per-faction summary plus the live price board. -json dumps
// the raw response instead.
func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	raw := fs.Bool("json", false, "print the raw state JSON")
	_ = fs.Parse(args)

	body := adminFetch(http.MethodGet, *baseURL, "/admin/v1/state", 5*time.Second)
	if *raw {
		fmt.Println(string(body))
		return
	}

	var st game.StateSnapshot
	if err := json.Unmarshal(body, &st); err != nil {
		fmt.Fprintln(os.Stderr, "decode state:", err)
		os.Exit(1)
	}
	fmt.Printf("turn=%d game_over=%v", st.Turn, st.GameOver)
	if st.GameOver {
		fmt.Printf(" victor=%s victory_type=%s", st.Victor, st.VictoryType)
	}
	fmt.Println()
	for _, f := range st.Factions {
		status := "alive"
		if f.Eliminated {
			status = "eliminated"
		}
		fmt.Printf("  %-12s %-10s colonies=%d researched=%d", f.ID, status, f.Colonies, f.Researched)
		if f.Current != "" {
			fmt.Printf(" researching=%s", f.Current)
		}
		fmt.Println()
	}
	kinds := make([]string, 0, len(st.Prices))
	for k := range st.Prices {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("  price %-12s %.2f\n", k, st.Prices[k])
	}
}

// snapshotCmd asks the server to write a save immediately.
func snapshotCmd(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	_ = fs.Parse(args)

	body := adminFetch(http.MethodPost, *baseURL, "/admin/v1/snapshot", 10*time.Second)
	var resp struct {
		OK    bool   `json:"ok"`
		Turn  uint64 `json:"turn"`
		Path  string `json:"path"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		fmt.Fprintln(os.Stderr, "decode response:", err)
		os.Exit(1)
	}
	if !resp.OK {
		fmt.Fprintln(os.Stderr, "snapshot failed:", resp.Error)
		os.Exit(1)
	}
	fmt.Printf("saved turn=%d path=%s\n", resp.Turn, resp.Path)
}

// adminFetch performs one admin request and exits nonzero on transport
// or HTTP failure. The body is returned for the caller to decode.
func adminFetch(method, baseURL, path string, timeout time.Duration) []byte {
	u := strings.TrimRight(strings.TrimSpace(baseURL), "/") + path
	req, err := http.NewRequest(method, u, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	cl := &http.Client{Timeout: timeout}
	resp, err := cl.Do(req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "request:", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode/100 != 2 {
		fmt.Fprintf(os.Stderr, "%s: HTTP %d: %s\n", path, resp.StatusCode, strings.TrimSpace(string(b)))
		os.Exit(1)
	}
	return b
}

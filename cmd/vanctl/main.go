// Command vanctl is a small loopback demo: it opens the ctrl_disp
// controller endpoint and the buffered "/display" endpoint in the same
// process, pumps a Sink's queued records over the cable, and prints
// Metrics periodically. Grounded on the teacher's cmd/ublk-mem/main.go
// flag-parsing and signal-handling shape (the standard flag package, not
// a CLI framework — the teacher hand-rolls its own flags too).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vancore/van"
	"github.com/vancore/van/backend"
	"github.com/vancore/van/buffered"
	"github.com/vancore/van/cable"
	"github.com/vancore/van/internal/logging"
	"github.com/vancore/van/internal/sem"
	"github.com/vancore/van/internal/uapi"
)

func main() {
	var (
		shmPath  = flag.String("shm", van.ShmFile, "path to the backing shared-memory file")
		interval = flag.Duration("interval", time.Second, "metrics print interval")
		verbose  = flag.Bool("v", false, "verbose output")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	rt, err := van.Init(&van.Config{ShmPath: *shmPath, Creator: true, Logging: logConfig})
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer rt.Exit()

	ctrl, err := rt.Open(uapi.EndpointConfig{
		ID:           uapi.EndpointCtrlDisp,
		Mode:         uapi.ModeBlocking,
		MyIntName:    "van_c_di_int",
		OtherIntName: "van_disp_int",
	})
	if err != nil {
		log.Fatalf("open controller: %v", err)
	}
	defer func() {
		sem.Unlink("van_c_di_int")
		sem.Unlink("van_disp_int")
	}()

	disp, err := buffered.Open(rt.Cable, "/display", rt.Metrics)
	if err != nil {
		log.Fatalf("open buffered display: %v", err)
	}
	defer disp.Close(rt.Cable)

	sink := backend.NewMemSink()
	sink.Queue([]byte("hello, display"))
	sink.Queue([]byte("a second line"))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()

	done := make(chan struct{})
	go pump(ctrl, disp, sink, done)

	fmt.Println("vanctl: pumping loopback traffic over /display, Ctrl+C to stop")
	for {
		select {
		case <-ticker.C:
			snap := rt.Metrics.Snapshot()
			fmt.Printf("metrics: ctrl_disp out=%d display in=%d\n",
				snap.Endpoints[uapi.EndpointCtrlDisp].BytesOut,
				snap.Endpoints[uapi.EndpointDisplay].BytesIn)
		case <-stop:
			close(done)
			fmt.Println("vanctl: shutting down")
			return
		}
	}
}

// pump drains sink's queued records onto the cable and hands delivered
// records from the buffered display back to sink, until done is closed.
func pump(ctrl *cable.Endpoint, disp *buffered.Endpoint, sink *backend.MemSink, done <-chan struct{}) {
	dst := make([]byte, van.PayloadSize)
	for {
		select {
		case <-done:
			return
		default:
		}
		if data, ok := sink.Produce(); ok {
			if n := ctrl.Write(data); n != len(data) {
				logging.Default().Warnf("pump: short write (%d of %d bytes)", n, len(data))
			}
		}
		if n := disp.Read(dst); n > 0 {
			sink.Consume(dst[:n])
			fmt.Printf("display received: %s\n", dst[:n])
		}
		time.Sleep(10 * time.Millisecond)
	}
}

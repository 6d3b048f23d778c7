// rerunsink-demo runs a videotestsrc pipeline through the rerunsink core,
// demonstrating the three output destinations: spawn a local viewer, save
// the recording to disk, or stream it to a remote endpoint.
//
// Usage:
//
//	rerunsink-demo                          # spawn a local viewer
//	rerunsink-demo --mode disk              # save to example.rrl
//	rerunsink-demo --mode grpc --grpc-address 127.0.0.1:9090
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/tinyzimmer/go-gst/gst"
	"github.com/tinyzimmer/go-gst/gst/app"

	rerunsink "github.com/RidgeRun/gst-rerunsink"
	"github.com/RidgeRun/gst-rerunsink/internal/gstglue"
)

const version = "v0.1.0"

func main() {
	mode := flag.String("mode", "spawn", "Destination: spawn, disk, grpc, none")
	outputFile := flag.String("output", "example.rrl", "Output file (disk mode)")
	grpcAddress := flag.String("grpc-address", "127.0.0.1:9090", "Remote endpoint (grpc mode)")
	recordingID := flag.String("recording-id", "rerunsink-demo", "Recording identifier")
	imagePath := flag.String("image-path", "camera/front/frame", "Entity path for frames")
	width := flag.Int("width", 320, "Frame width")
	height := flag.Int("height", 240, "Frame height")
	numBuffers := flag.Int("num-buffers", 100, "Frames to produce before EOS")
	debug := flag.Bool("debug", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("rerunsink-demo %s\n", version)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	cfg := rerunsink.DefaultConfig()
	cfg.RecordingID = *recordingID
	cfg.ImagePath = *imagePath
	switch *mode {
	case "spawn":
		// defaults already spawn a viewer
	case "disk":
		cfg.OutputFile = *outputFile
	case "grpc":
		cfg.GRPCAddress = *grpcAddress
	case "none":
		cfg.SpawnViewer = false
	default:
		log.Fatalf("Invalid mode: %s (must be spawn, disk, grpc, or none)", *mode)
	}

	sink := rerunsink.New(cfg)
	if err := sink.Start(); err != nil {
		log.Fatalf("Failed to start sink: %v", err)
	}
	defer sink.Stop()

	if err := runPipeline(sink, *width, *height, *numBuffers); err != nil {
		log.Fatalf("Pipeline failed: %v", err)
	}

	slog.Info("demo finished", "mode", *mode)
}

// runPipeline assembles videotestsrc → videoconvert → capsfilter → appsink
// and runs it to EOS with the rerunsink core attached.
func runPipeline(sink *rerunsink.Sink, width, height, numBuffers int) error {
	gst.Init(nil)

	pipeline, err := gst.NewPipeline("")
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}

	src, err := gst.NewElement("videotestsrc")
	if err != nil {
		return fmt.Errorf("create videotestsrc: %w", err)
	}
	src.SetProperty("num-buffers", numBuffers)

	convert, err := gst.NewElement("videoconvert")
	if err != nil {
		return fmt.Errorf("create videoconvert: %w", err)
	}

	capsfilter, err := gst.NewElement("capsfilter")
	if err != nil {
		return fmt.Errorf("create capsfilter: %w", err)
	}
	capsStr := fmt.Sprintf("video/x-raw,format=RGB,width=%d,height=%d", width, height)
	capsfilter.SetProperty("caps", gst.NewCapsFromString(capsStr))

	appsink, err := app.NewAppSink()
	if err != nil {
		return fmt.Errorf("create appsink: %w", err)
	}
	appsink.SetProperty("sync", false)

	pipeline.AddMany(src, convert, capsfilter, appsink.Element)
	if err := gst.ElementLinkMany(src, convert, capsfilter, appsink.Element); err != nil {
		return fmt.Errorf("link pipeline elements: %w", err)
	}

	gstglue.Attach(appsink, sink)

	if err := pipeline.SetState(gst.StatePlaying); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	defer pipeline.SetState(gst.StateNull)

	bus := pipeline.GetPipelineBus()
	for {
		msg := bus.TimedPop(10 * time.Second)
		if msg == nil {
			return fmt.Errorf("timed out waiting for pipeline messages")
		}
		switch msg.Type() {
		case gst.MessageEOS:
			slog.Info("end of stream")
			return nil
		case gst.MessageError:
			return fmt.Errorf("pipeline error: %s", msg.ParseError().Error())
		}
	}
}

package feed

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/ayusman/fluidportrait/internal/capture"
	"github.com/ayusman/fluidportrait/internal/detector"
	"github.com/ayusman/fluidportrait/internal/render"
	"gocv.io/x/gocv"
)

// Pump timing defaults.
const (
	DefaultIdleFPS     = 5
	DefaultActiveFPS   = 15
	DefaultIdleTimeout = 2 * time.Second
)

// Pump reads camera frames, runs detection and publishes the latest face,
// hands and preview into slots. The rate drops to IdleFPS when the motion
// detector sees nothing for IdleTimeout.
type Pump struct {
	Camera   capture.Camera
	Motion   *capture.MotionDetector // nil keeps the active rate
	Detector detector.Detector

	Face    *Slot[detector.FaceLandmarks]
	Hands   *Slot[[]detector.HandLandmarks]
	Preview *Slot[image.Image] // nil skips preview rendering

	// OnError is called when detection fails on a frame.
	OnError func(error)

	IdleFPS     int
	ActiveFPS   int
	IdleTimeout time.Duration
}

func (p *Pump) defaults() {
	if p.IdleFPS <= 0 {
		p.IdleFPS = DefaultIdleFPS
	}
	if p.ActiveFPS <= 0 {
		p.ActiveFPS = DefaultActiveFPS
	}
	if p.IdleTimeout <= 0 {
		p.IdleTimeout = DefaultIdleTimeout
	}
}

// Run pumps frames until ctx is cancelled or the camera closes.
func (p *Pump) Run(ctx context.Context) error {
	if p.Camera == nil || p.Detector == nil || p.Face == nil || p.Hands == nil {
		return errors.New("pump requires camera, detector and slots")
	}
	p.defaults()

	active := true
	lastMotion := time.Now()
	p.Camera.SetFPS(p.ActiveFPS)

	ticker := time.NewTicker(time.Second / time.Duration(p.ActiveFPS))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		frame, err := p.Camera.ReadFrame()
		if err != nil {
			if errors.Is(err, capture.ErrCameraNotOpen) {
				return err
			}
			log.Printf("Error reading frame: %v", err)
			continue
		}

		if p.Motion != nil {
			moving, _ := p.Motion.Detect(frame)
			switch {
			case moving:
				lastMotion = time.Now()
				if !active {
					active = true
					p.setRate(ticker, p.ActiveFPS)
					log.Println("Switched to active mode")
				}
			case active && time.Since(lastMotion) > p.IdleTimeout:
				active = false
				p.setRate(ticker, p.IdleFPS)
				log.Println("Switched to idle mode")
			}
		}

		result, err := p.Detector.Detect(frame)
		if err != nil {
			frame.Close()
			if p.OnError != nil {
				p.OnError(fmt.Errorf("detect: %w", err))
			}
			continue
		}

		p.Face.Store(result.Face)
		p.Hands.Store(result.Hands)

		if p.Preview != nil {
			p.publishPreview(frame, result)
		}
		frame.Close()
	}
}

func (p *Pump) setRate(ticker *time.Ticker, fps int) {
	p.Camera.SetFPS(fps)
	ticker.Reset(time.Second / time.Duration(fps))
}

func (p *Pump) publishPreview(frame *gocv.Mat, result detector.Result) {
	preview, err := render.Preview(frame, result)
	defer preview.Close()
	if err != nil {
		log.Printf("Error rendering preview: %v", err)
	}

	img, err := preview.ToImage()
	if err != nil {
		log.Printf("Error converting preview: %v", err)
		return
	}
	p.Preview.Store(img)
}

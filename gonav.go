// gonav runs the inertial navigator against a synthetic scenario and
// reports how the estimates track the analytic ground truth. Output can
// be logged to CSV, plotted to PNG, and streamed to web clients.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/athertop/gonav/nav"
	"github.com/athertop/gonav/navweb"
	"github.com/athertop/gonav/sim"
)

func main() {
	scenario := flag.String("scenario", "circular", "scenario to run: circular or static")
	duration := flag.Float64("duration", 30, "scenario length, s")
	rate := flag.Float64("rate", 100, "sampling rate, Hz")
	radius := flag.Float64("radius", 1, "circle radius, m")
	omega := flag.Float64("omega", 1, "angular rate, rad/s")
	noise := flag.Float64("noise", 0.05, "sensor noise standard deviation")
	seed := flag.Int64("seed", 1, "noise seed")
	csvPath := flag.String("csv", "", "CSV log path, empty to disable")
	plotPath := flag.String("plot", "", "track plot PNG path, empty to disable")
	web := flag.Bool("web", false, "stream state over websocket and pace the run at the sampling rate")
	flag.Parse()

	var s sim.Situation
	switch *scenario {
	case "circular":
		s = sim.NewCircularSituation(*duration, *rate, *radius, *omega, *noise, *seed)
	case "static":
		s = sim.NewStaticSituation(*duration, *rate, *noise, *seed)
	default:
		log.Fatalln("unknown scenario:", *scenario)
	}

	n, err := nav.New(s.SampleRate())
	if err != nil {
		log.Fatalln(err)
	}

	var logger *sim.Logger
	if *csvPath != "" {
		logger, err = sim.NewLogger(*csvPath,
			"t", "px", "py", "pz", "vx", "vy", "vz", "roll", "pitch", "yaw",
			"truePx", "truePy", "truePz")
		if err != nil {
			log.Fatalln(err)
		}
		defer logger.Close()
	}

	var listener *navweb.Listener
	if *web {
		room := navweb.NewRoom()
		go room.Run()
		http.Handle("/navweb", room)
		go func() {
			log.Printf("NavWeb: listening on :%d\n", navweb.Port)
			log.Println(http.ListenAndServe(fmt.Sprintf(":%d", navweb.Port), nil))
		}()
		listener = navweb.NewListener(room)
	}

	dt := time.Duration(float64(time.Second) / s.SampleRate())
	estPts := make(plotter.XYs, 0, s.NumSamples())
	truePts := make(plotter.XYs, 0, s.NumSamples())

	var sumSq float64
	for i := 0; i < s.NumSamples(); i++ {
		accel, gyro := s.Sample(i)
		_, _, pos, err := n.ProcessSample(accel, gyro)
		if err != nil {
			log.Fatalln("navigator failed, reconstruct to recover:", err)
		}

		t := float64(i) / s.SampleRate()
		truePos, _ := s.Truth(t)
		for k := 0; k < 3; k++ {
			sumSq += (pos[k] - truePos[k]) * (pos[k] - truePos[k])
		}

		estPts = append(estPts, plotter.XY{X: pos[0], Y: pos[1]})
		truePts = append(truePts, plotter.XY{X: truePos[0], Y: truePos[1]})

		if logger != nil {
			orientation, velocity, _ := n.State()
			logger.Log(t, pos[0], pos[1], pos[2],
				velocity[0], velocity[1], velocity[2],
				orientation[0], orientation[1], orientation[2],
				truePos[0], truePos[1], truePos[2])
		}

		if listener != nil {
			if err := listener.Update(n, accel, gyro); err != nil {
				log.Println("NavWeb: update failed:", err)
			}
			time.Sleep(dt)
		}
	}

	rms := math.Sqrt(sumSq / float64(s.NumSamples()))
	fmt.Printf("processed %d samples at %.0f Hz, RMS position error %.3f m\n",
		s.NumSamples(), s.SampleRate(), rms)

	if *plotPath != "" {
		if err := plotTracks(*plotPath, estPts, truePts); err != nil {
			log.Fatalln(err)
		}
		fmt.Println("track plot written to", *plotPath)
	}
}

// plotTracks renders the estimated and true horizontal tracks.
func plotTracks(path string, est, truth plotter.XYs) error {
	p := plot.New()
	p.Title.Text = "gonav track"
	p.X.Label.Text = "x, m"
	p.Y.Label.Text = "y, m"

	if err := plotutil.AddLines(p, "Estimated", est, "True", truth); err != nil {
		return err
	}
	return p.Save(6*vg.Inch, 6*vg.Inch, path)
}

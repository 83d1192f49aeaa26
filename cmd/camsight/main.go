package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"github.com/jmakovec/camsight/pkg/acceleration"
	"github.com/jmakovec/camsight/pkg/alert"
	"github.com/jmakovec/camsight/pkg/app"
	"github.com/jmakovec/camsight/pkg/camera"
	"github.com/jmakovec/camsight/pkg/config"
	"github.com/jmakovec/camsight/pkg/emotion"
	"github.com/jmakovec/camsight/pkg/facemesh"
	"github.com/jmakovec/camsight/pkg/hand"
	"github.com/jmakovec/camsight/pkg/logging"
	"github.com/jmakovec/camsight/pkg/proximity"
	"github.com/jmakovec/camsight/pkg/storage"
)

const version = "0.1.0"

// Command represents a CLI command.
type Command struct {
	Name        string
	Description string
	Usage       string
	Run         func(args []string) error
}

var (
	cfg      *config.Config
	backend  string
	commands map[string]*Command
)

func init() {
	commands = map[string]*Command{
		"facemesh": {
			Name:        "facemesh",
			Description: "Real-time face landmark overlay",
			Usage:       "camsight facemesh",
			Run:         cmdFaceMesh,
		},
		"emotion": {
			Name:        "emotion",
			Description: "Real-time facial emotion labeling",
			Usage:       "camsight emotion",
			Run:         cmdEmotion,
		},
		"handdist": {
			Name:        "handdist",
			Description: "Hand distance estimation with proximity alert",
			Usage:       "camsight handdist",
			Run:         cmdHandDist,
		},
		"calibrate": {
			Name:        "calibrate",
			Description: "Derive the camera focal length and save it as a profile",
			Usage:       "camsight calibrate <profile> -distance <cm> [-known-width <cm>] [-samples <n>] [-force]",
			Run:         cmdCalibrate,
		},
		"profiles": {
			Name:        "profiles",
			Description: "List stored calibration profiles",
			Usage:       "camsight profiles",
			Run:         cmdProfiles,
		},
		"remove-profile": {
			Name:        "remove-profile",
			Description: "Remove a stored calibration profile",
			Usage:       "camsight remove-profile <profile>",
			Run:         cmdRemoveProfile,
		},
		"download-models": {
			Name:        "download-models",
			Description: "Download the face models (dlib) and emotion model (ONNX)",
			Usage:       "camsight download-models [directory]",
			Run:         cmdDownloadModels,
		},
		"config": {
			Name:        "config",
			Description: "Show current configuration",
			Usage:       "camsight config",
			Run:         cmdConfig,
		},
		"version": {
			Name:        "version",
			Description: "Show version information",
			Usage:       "camsight version",
			Run:         cmdVersion,
		},
		"help": {
			Name:        "help",
			Description: "Show help information",
			Usage:       "camsight help [command]",
			Run:         cmdHelp,
		},
	}
}

func main() {
	// Parse global flags
	configFile := flag.String("config", "", "Path to configuration file")
	debug := flag.Bool("debug", false, "Enable debug logging")
	device := flag.String("device", "", "Camera device (overrides config)")
	flag.StringVar(&backend, "backend", "auto", "DNN backend: auto, cpu, cuda, openvino")
	flag.Parse()

	// Get remaining args after flags
	args := flag.Args()

	// Load configuration
	var err error
	if *configFile != "" {
		cfg, err = config.Load(*configFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	// Expand paths in config
	cfg.ExpandPaths()
	if *device != "" {
		cfg.Camera.Device = *device
	}

	// Initialize logging
	logLevel := cfg.Logging.Level
	if *debug {
		logLevel = "debug"
	}
	if err := logging.Init(logLevel, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}

	logging.Debugf("camsight v%s starting", version)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Show usage if no command provided
	if len(args) < 1 {
		printUsage()
		os.Exit(0)
	}

	// Find and run command
	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmdName)
		printUsage()
		os.Exit(1)
	}

	// Run the command
	if err := cmd.Run(args[1:]); err != nil {
		logging.WithError(err).Errorf("Command '%s' failed", cmdName)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("camsight - Real-time Webcam Vision Demos")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Usage: camsight [options] <command> [arguments]")
	fmt.Println("\nOptions:")
	fmt.Println("  -config <file>    Path to configuration file")
	fmt.Println("  -debug            Enable debug logging")
	fmt.Println("  -device <path>    Camera device (overrides config)")
	fmt.Println("  -backend <name>   DNN backend: auto, cpu, cuda, openvino")
	fmt.Println("\nCommands:")
	for _, name := range []string{"facemesh", "emotion", "handdist", "calibrate", "profiles", "remove-profile", "download-models", "config", "version", "help"} {
		cmd := commands[name]
		fmt.Printf("  %-16s %s\n", cmd.Name, cmd.Description)
	}
	fmt.Println("\nExamples:")
	fmt.Println("  camsight handdist                       # Hand distance demo with defaults")
	fmt.Println("  camsight calibrate laptop -distance 30  # Calibrate against a palm at 30 cm")
	fmt.Println("  camsight -debug facemesh                # Landmark overlay with debug output")
	fmt.Println("\nRun 'camsight help <command>' for more information on a command.")
}

// openCamera opens and configures the capture device.
func openCamera() (*camera.Webcam, error) {
	cam := camera.NewWebcam()
	if err := cam.Open(cfg.Camera.Device); err != nil {
		return nil, fmt.Errorf("could not open camera (is it connected and not in use?): %w", err)
	}
	if err := cam.SetResolution(cfg.Camera.Width, cfg.Camera.Height); err != nil {
		_ = cam.Close()
		return nil, err
	}
	if err := cam.SetFPS(cfg.Camera.FPS); err != nil {
		_ = cam.Close()
		return nil, err
	}
	return cam, nil
}

// netPreferences initializes acceleration detection and returns the OpenCV
// DNN preferences for the selected backend.
func netPreferences() (gocv.NetBackendType, gocv.NetTargetType, error) {
	mgr := acceleration.NewManager()
	accelCfg := acceleration.DefaultConfig()
	accelCfg.PreferredBackend = acceleration.Backend(backend)
	if err := mgr.Initialize(accelCfg); err != nil {
		return 0, 0, err
	}
	b, t := mgr.NetPreferences()
	return b, t, nil
}

// loadCalibration resolves the hand-distance calibration, preferring the
// configured profile over the config constants.
func loadCalibration() (proximity.Calibration, error) {
	cal := proximity.Calibration{
		KnownWidthCM:  cfg.HandDist.KnownWidthCM,
		FocalLengthPX: cfg.HandDist.FocalLengthPX,
	}

	if cfg.HandDist.Profile == "" {
		return cal, nil
	}

	store, err := storage.NewFileStorage(cfg.Storage.DataDir, cfg.Storage.EncryptionEnabled)
	if err != nil {
		return cal, err
	}
	profile, err := store.LoadProfile(cfg.HandDist.Profile)
	if err != nil {
		return cal, fmt.Errorf("calibration profile %q: %w", cfg.HandDist.Profile, err)
	}
	if err := store.UpdateLastUsed(profile.Name); err != nil {
		logging.WithError(err).Warnf("Could not update profile %q", profile.Name)
	}

	logging.Infof("Using calibration profile %q (focal length %.1f px)", profile.Name, profile.Calibration.FocalLengthPX)
	return profile.Calibration, nil
}

// Command implementations

func cmdFaceMesh(args []string) error {
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	detector := facemesh.NewDetector(cfg.FaceMesh.MaxFaces)
	if err := detector.LoadModels(cfg.FaceMesh.ModelPath); err != nil {
		return fmt.Errorf("face models missing? run 'camsight download-models': %w", err)
	}

	cam, err := openCamera()
	if err != nil {
		_ = detector.Close()
		return err
	}
	defer func() { _ = cam.Close() }()

	demo := app.NewFaceMeshDemo(detector, cfg.FaceMesh.DisplayWidth)
	defer func() { _ = demo.Close() }()

	return app.Run(cam, demo)
}

func cmdEmotion(args []string) error {
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	detector := facemesh.NewDetector(1)
	if err := detector.LoadModels(cfg.FaceMesh.ModelPath); err != nil {
		return fmt.Errorf("face models missing? run 'camsight download-models': %w", err)
	}

	classifier, err := emotion.NewNetClassifier(cfg.Emotion.ModelFile, cfg.Emotion.Labels)
	if err != nil {
		_ = detector.Close()
		return fmt.Errorf("emotion model missing? run 'camsight download-models': %w", err)
	}

	netBackend, netTarget, err := netPreferences()
	if err != nil {
		_ = detector.Close()
		_ = classifier.Close()
		return err
	}
	if err := classifier.SetPreferences(netBackend, netTarget); err != nil {
		logging.WithError(err).Warn("Could not apply DNN preferences, using defaults")
	}

	cam, err := openCamera()
	if err != nil {
		_ = detector.Close()
		_ = classifier.Close()
		return err
	}
	defer func() { _ = cam.Close() }()

	demo := app.NewEmotionDemo(detector, classifier, cfg.Emotion.DisplayWidth)
	defer func() { _ = demo.Close() }()

	return app.Run(cam, demo)
}

func cmdHandDist(args []string) error {
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	cal, err := loadCalibration()
	if err != nil {
		return err
	}

	estimator, err := proximity.NewEstimator(cal, cfg.HandDist.ThresholdCM)
	if err != nil {
		return err
	}

	detector, err := newHandDetector()
	if err != nil {
		return err
	}

	cam, err := openCamera()
	if err != nil {
		_ = detector.Close()
		return err
	}
	defer func() { _ = cam.Close() }()

	cooldown := time.Duration(cfg.HandDist.AlertCooldownMS) * time.Millisecond
	alerter := alert.NewThrottled(alert.NewBeeper(os.Stdout), cooldown)

	demo := app.NewHandDistDemo(detector, estimator, alerter, cfg.HandDist.DisplayWidth)
	defer func() { _ = demo.Close() }()

	return app.Run(cam, demo)
}

func newHandDetector() (*hand.NetDetector, error) {
	detector, err := hand.NewNetDetector(cfg.HandDist.ModelFile, hand.Config{
		MaxHands:        2,
		MinConfidence:   cfg.HandDist.MinConfidence,
		MinTrackingConf: cfg.HandDist.MinTrackingConf,
	})
	if err != nil {
		return nil, fmt.Errorf("hand landmark model missing (see 'camsight help download-models'): %w", err)
	}

	netBackend, netTarget, err := netPreferences()
	if err != nil {
		_ = detector.Close()
		return nil, err
	}
	if err := detector.SetPreferences(netBackend, netTarget); err != nil {
		logging.WithError(err).Warn("Could not apply DNN preferences, using defaults")
	}

	return detector, nil
}

func cmdCalibrate(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("profile name required\nUsage: %s", commands["calibrate"].Usage)
	}
	profileName := args[0]

	fs := flag.NewFlagSet("calibrate", flag.ContinueOnError)
	knownWidth := fs.Float64("known-width", cfg.HandDist.KnownWidthCM, "Real width of the reference object in cm")
	knownDistance := fs.Float64("distance", 0, "Distance of the reference object from the camera in cm (required)")
	samples := fs.Int("samples", 30, "Number of measurement frames to collect")
	force := fs.Bool("force", false, "Overwrite an existing profile")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if *knownDistance <= 0 {
		return fmt.Errorf("-distance is required and must be positive")
	}
	if *samples <= 0 {
		return fmt.Errorf("-samples must be positive")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	store, err := storage.NewFileStorage(cfg.Storage.DataDir, cfg.Storage.EncryptionEnabled)
	if err != nil {
		return err
	}
	if store.ProfileExists(profileName) && !*force {
		return fmt.Errorf("profile %q already exists (use -force to overwrite)", profileName)
	}

	detector, err := newHandDetector()
	if err != nil {
		return err
	}
	defer func() { _ = detector.Close() }()

	cam, err := openCamera()
	if err != nil {
		return err
	}
	defer func() { _ = cam.Close() }()

	fmt.Printf("Calibrating %q: hold your hand flat at %.0f cm from the camera.\n", profileName, *knownDistance)
	fmt.Printf("Collecting %d measurements...\n", *samples)

	widths, err := collectWidths(cam, detector, *samples)
	if err != nil {
		return err
	}
	if len(widths) == 0 {
		return fmt.Errorf("no hand detected during calibration")
	}

	// Median perceived width rejects the odd glitched frame.
	sort.Float64s(widths)
	median := stat.Quantile(0.5, stat.Empirical, widths, nil)

	focal, err := proximity.FocalLengthFromReference(int(median), *knownWidth, *knownDistance)
	if err != nil {
		return err
	}

	cal := proximity.Calibration{KnownWidthCM: *knownWidth, FocalLengthPX: focal}
	profile := storage.Profile{
		Name:        profileName,
		Calibration: cal,
		CreatedAt:   time.Now(),
		LastUsed:    time.Now(),
		Metadata: map[string]string{
			"camera":              cfg.Camera.Device,
			"reference_distance":  fmt.Sprintf("%.1f", *knownDistance),
			"median_width_pixels": fmt.Sprintf("%.0f", median),
			"samples":             fmt.Sprintf("%d", len(widths)),
		},
	}
	if err := store.SaveProfile(profile); err != nil {
		return err
	}

	fmt.Printf("\nCalibration complete:\n")
	fmt.Printf("  Median perceived width: %.0f px\n", median)
	fmt.Printf("  Focal length:           %.1f px\n", focal)
	fmt.Printf("\nSaved profile %q. Set hand_distance.calibration_profile: %s to use it.\n", profileName, profileName)
	return nil
}

// collectWidths captures frames until the requested number of valid
// perceived-width measurements is gathered. Frames without a hand are
// skipped; a stream that ends early returns what was collected.
func collectWidths(cam camera.Camera, detector hand.Detector, samples int) ([]float64, error) {
	frame := gocv.NewMat()
	defer frame.Close()
	rgb := gocv.NewMat()
	defer rgb.Close()

	var widths []float64
	misses := 0
	const maxMisses = 300 // bail out after ~10s of empty frames at 30fps

	for len(widths) < samples && misses < maxMisses {
		if err := cam.Capture(&frame); err != nil {
			break
		}

		gocv.CvtColor(frame, &rgb, gocv.ColorBGRToRGB)
		hands, err := detector.Detect(&rgb)
		if err != nil {
			return nil, err
		}
		if len(hands) == 0 {
			misses++
			continue
		}

		w := proximity.PerceivedWidth(hands[0].PixelXs(frame.Cols()))
		if w <= 0 {
			misses++
			continue
		}
		widths = append(widths, float64(w))
	}

	return widths, nil
}

func cmdProfiles(args []string) error {
	store, err := storage.NewFileStorage(cfg.Storage.DataDir, cfg.Storage.EncryptionEnabled)
	if err != nil {
		return err
	}

	names, err := store.ListProfiles()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No calibration profiles stored.")
		return nil
	}

	fmt.Println("Calibration profiles:")
	for _, name := range names {
		profile, err := store.LoadProfile(name)
		if err != nil {
			fmt.Printf("  - %s (unreadable: %v)\n", name, err)
			continue
		}
		fmt.Printf("  - %-16s focal %.1f px, known width %.1f cm, last used %s\n",
			profile.Name,
			profile.Calibration.FocalLengthPX,
			profile.Calibration.KnownWidthCM,
			profile.LastUsed.Format("2006-01-02"))
	}
	fmt.Printf("\nTotal: %d profile(s)\n", len(names))
	return nil
}

func cmdRemoveProfile(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("profile name required\nUsage: %s", commands["remove-profile"].Usage)
	}
	name := args[0]

	store, err := storage.NewFileStorage(cfg.Storage.DataDir, cfg.Storage.EncryptionEnabled)
	if err != nil {
		return err
	}
	if err := store.DeleteProfile(name); err != nil {
		return err
	}

	fmt.Printf("Calibration profile %q has been removed.\n", name)
	return nil
}

func cmdConfig(args []string) error {
	fmt.Println("Current Configuration:")
	fmt.Println("======================")
	fmt.Println()
	fmt.Println("[Camera]")
	fmt.Printf("  Device:          %s\n", cfg.Camera.Device)
	fmt.Printf("  Resolution:      %dx%d @ %d FPS\n", cfg.Camera.Width, cfg.Camera.Height, cfg.Camera.FPS)
	fmt.Println()
	fmt.Println("[Face Mesh]")
	fmt.Printf("  Model Path:      %s\n", cfg.FaceMesh.ModelPath)
	fmt.Printf("  Min Confidence:  %.2f\n", cfg.FaceMesh.MinConfidence)
	fmt.Printf("  Max Faces:       %d\n", cfg.FaceMesh.MaxFaces)
	fmt.Printf("  Display Width:   %d\n", cfg.FaceMesh.DisplayWidth)
	fmt.Println()
	fmt.Println("[Emotion]")
	fmt.Printf("  Model File:      %s\n", cfg.Emotion.ModelFile)
	fmt.Printf("  Labels:          %v\n", cfg.Emotion.Labels)
	fmt.Printf("  Display Width:   %d\n", cfg.Emotion.DisplayWidth)
	fmt.Println()
	fmt.Println("[Hand Distance]")
	fmt.Printf("  Model File:      %s\n", cfg.HandDist.ModelFile)
	fmt.Printf("  Known Width:     %.1f cm\n", cfg.HandDist.KnownWidthCM)
	fmt.Printf("  Focal Length:    %.1f px\n", cfg.HandDist.FocalLengthPX)
	fmt.Printf("  Threshold:       %.1f cm\n", cfg.HandDist.ThresholdCM)
	fmt.Printf("  Alert Cooldown:  %d ms\n", cfg.HandDist.AlertCooldownMS)
	fmt.Printf("  Profile:         %s\n", cfg.HandDist.Profile)
	fmt.Printf("  Display Width:   %d\n", cfg.HandDist.DisplayWidth)
	fmt.Println()
	fmt.Println("[Storage]")
	fmt.Printf("  Data Dir:        %s\n", cfg.Storage.DataDir)
	fmt.Printf("  Encryption:      %t\n", cfg.Storage.EncryptionEnabled)
	fmt.Println()
	fmt.Println("[Logging]")
	fmt.Printf("  Level:           %s\n", cfg.Logging.Level)
	fmt.Printf("  File:            %s\n", cfg.Logging.File)

	return nil
}

func cmdVersion(args []string) error {
	fmt.Printf("camsight v%s\n", version)
	fmt.Println("Real-time Webcam Vision Demos")
	fmt.Println()
	fmt.Printf("OpenCV: %s\n", gocv.Version())
	return nil
}

func cmdHelp(args []string) error {
	if len(args) == 0 {
		printUsage()
		return nil
	}

	cmdName := args[0]
	cmd, ok := commands[cmdName]
	if !ok {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	fmt.Printf("Command: %s\n", cmd.Name)
	fmt.Printf("Description: %s\n", cmd.Description)
	fmt.Printf("Usage: %s\n", cmd.Usage)

	// Add specific help for each command
	switch cmdName {
	case "handdist":
		fmt.Println("\nHolds the pinhole formula: distance = known_width * focal_length / perceived_width.")
		fmt.Println("A beep is raised while a hand is closer than the configured threshold.")
		fmt.Println("Run 'camsight calibrate' first for accurate distances on your camera.")
	case "calibrate":
		fmt.Println("\nCalibration Process:")
		fmt.Println("  1. Hold your hand flat, palm facing the camera, at the given distance")
		fmt.Println("  2. Keep it steady while measurements are collected")
		fmt.Println("  3. The derived focal length is stored as a named profile")
	case "download-models":
		fmt.Println("\nDownloads the dlib face models and the FER+ emotion model.")
		fmt.Println("The hand landmark model is not freely hosted; export it yourself and")
		fmt.Println("place it at the path configured as hand_distance.model_file.")
	case "config":
		fmt.Println("\nConfiguration Locations:")
		fmt.Println("  System: /etc/camsight/camsight.yaml")
		fmt.Println("  User:   ~/.config/camsight/camsight.yaml")
		fmt.Println("\nUse -config flag to specify a custom config file.")
	}

	return nil
}

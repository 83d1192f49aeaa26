package main

import (
	"compress/bzip2"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jmakovec/camsight/pkg/logging"
)

func cmdDownloadModels(args []string) error {
	modelDir := cfg.FaceMesh.ModelPath
	if len(args) > 0 {
		modelDir = args[0]
	}

	logging.Infof("Downloading models to: %s", modelDir)

	if err := os.MkdirAll(modelDir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	models := []struct {
		Name  string
		URL   string
		Bzip2 bool
	}{
		{
			Name:  "shape_predictor_5_face_landmarks.dat",
			URL:   "http://dlib.net/files/shape_predictor_5_face_landmarks.dat.bz2",
			Bzip2: true,
		},
		{
			Name:  "shape_predictor_68_face_landmarks.dat",
			URL:   "http://dlib.net/files/shape_predictor_68_face_landmarks.dat.bz2",
			Bzip2: true,
		},
		{
			Name:  "dlib_face_recognition_resnet_model_v1.dat",
			URL:   "http://dlib.net/files/dlib_face_recognition_resnet_model_v1.dat.bz2",
			Bzip2: true,
		},
		{
			Name:  "mmod_human_face_detector.dat",
			URL:   "http://dlib.net/files/mmod_human_face_detector.dat.bz2",
			Bzip2: true,
		},
		{
			Name: "emotion-ferplus-8.onnx",
			URL:  "https://github.com/onnx/models/raw/main/validated/vision/body_analysis/emotion_ferplus/model/emotion-ferplus-8.onnx",
		},
	}

	for _, model := range models {
		targetPath := filepath.Join(modelDir, model.Name)
		if _, err := os.Stat(targetPath); err == nil {
			logging.Infof("Model %s already exists, skipping", model.Name)
			continue
		}

		logging.Infof("Downloading %s...", model.Name)
		if err := downloadModel(model.URL, targetPath, model.Bzip2); err != nil {
			return fmt.Errorf("failed to download %s: %w", model.Name, err)
		}
		logging.Infof("Successfully downloaded %s", model.Name)
	}

	logging.Info("Face and emotion models downloaded successfully!")
	logging.Warnf("The hand landmark model is not downloaded automatically. Export it as ONNX and place it at: %s", cfg.HandDist.ModelFile)
	return nil
}

func downloadModel(url, targetPath string, compressed bool) error {
	// Model files are large, allow plenty of time
	client := &http.Client{
		Timeout: 10 * time.Minute,
	}

	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	out, err := os.Create(targetPath)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	var src io.Reader = resp.Body
	if compressed {
		src = bzip2.NewReader(resp.Body)
	}

	_, err = io.Copy(out, src)
	return err
}

// Package acceleration selects the compute backend for DNN inference.
// It detects NVIDIA CUDA and Intel OpenVINO availability and maps the choice
// onto OpenCV DNN backend/target preferences.
package acceleration

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"gocv.io/x/gocv"

	"github.com/jmakovec/camsight/pkg/logging"
)

// Backend represents an acceleration backend type.
type Backend string

const (
	// BackendCPU is the default CPU-only backend (always available).
	BackendCPU Backend = "cpu"

	// BackendCUDA is the NVIDIA CUDA backend.
	BackendCUDA Backend = "cuda"

	// BackendOpenVINO is the Intel OpenVINO backend for Intel GPUs/NPUs.
	BackendOpenVINO Backend = "openvino"

	// BackendAuto automatically selects the best available backend.
	BackendAuto Backend = "auto"
)

// BackendInfo contains information about an acceleration backend.
type BackendInfo struct {
	Backend     Backend
	Name        string
	Available   bool
	Version     string
	DeviceName  string
	DeviceCount int
}

// Config holds acceleration configuration.
type Config struct {
	PreferredBackend Backend
	FallbackToCPU    bool
}

// DefaultConfig returns default acceleration configuration.
func DefaultConfig() Config {
	return Config{
		PreferredBackend: BackendAuto,
		FallbackToCPU:    true,
	}
}

// ErrBackendNotAvailable is returned when a requested backend is not available.
var ErrBackendNotAvailable = errors.New("acceleration backend not available")

// Manager detects available backends and picks one. Construct it explicitly
// and share it between the demos that need DNN preferences.
type Manager struct {
	config            Config
	activeBackend     Backend
	availableBackends map[Backend]*BackendInfo
	mu                sync.RWMutex
	initialized       bool
}

// NewManager creates an uninitialized Manager.
func NewManager() *Manager {
	return &Manager{
		config:            DefaultConfig(),
		availableBackends: make(map[Backend]*BackendInfo),
	}
}

// Initialize detects backends and selects one according to the config.
func (m *Manager) Initialize(cfg Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.config = cfg

	m.detectBackends()

	backend, err := m.selectBackend(cfg.PreferredBackend)
	if err != nil {
		return err
	}
	m.activeBackend = backend
	m.initialized = true

	if info := m.availableBackends[backend]; info != nil {
		logging.Infof("Acceleration initialized: %s (%s)", info.Name, info.DeviceName)
	}

	return nil
}

// detectBackends detects all available acceleration backends.
func (m *Manager) detectBackends() {
	// CPU is always available
	m.availableBackends[BackendCPU] = &BackendInfo{
		Backend:     BackendCPU,
		Name:        "CPU (OpenCV)",
		Available:   true,
		DeviceName:  getCPUName(),
		DeviceCount: runtime.NumCPU(),
	}

	if cudaInfo := detectCUDA(); cudaInfo != nil {
		m.availableBackends[BackendCUDA] = cudaInfo
	}

	if openvinoInfo := detectOpenVINO(); openvinoInfo != nil {
		m.availableBackends[BackendOpenVINO] = openvinoInfo
	}
}

// selectBackend selects the best available backend.
func (m *Manager) selectBackend(preferred Backend) (Backend, error) {
	if preferred != BackendAuto {
		if info, ok := m.availableBackends[preferred]; ok && info.Available {
			return preferred, nil
		}
		if m.config.FallbackToCPU {
			logging.Warnf("Requested backend %s not available, falling back to CPU", preferred)
			return BackendCPU, nil
		}
		return BackendCPU, fmt.Errorf("%w: %s", ErrBackendNotAvailable, preferred)
	}

	// Auto-select: prefer CUDA > OpenVINO > CPU
	priorities := []Backend{BackendCUDA, BackendOpenVINO, BackendCPU}

	for _, backend := range priorities {
		if info, ok := m.availableBackends[backend]; ok && info.Available {
			return backend, nil
		}
	}

	return BackendCPU, nil
}

// GetActiveBackend returns the currently active backend.
func (m *Manager) GetActiveBackend() Backend {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeBackend
}

// GetBackendInfo returns information about a specific backend.
func (m *Manager) GetBackendInfo(backend Backend) *BackendInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.availableBackends[backend]
}

// GetAllBackends returns information about all detected backends.
func (m *Manager) GetAllBackends() map[Backend]*BackendInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[Backend]*BackendInfo)
	for k, v := range m.availableBackends {
		result[k] = v
	}
	return result
}

// IsAccelerated returns true if using GPU/NPU acceleration.
func (m *Manager) IsAccelerated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.activeBackend != BackendCPU && m.activeBackend != ""
}

// NetPreferences maps the active backend to OpenCV DNN preferences to pass
// to Net.SetPreferableBackend / SetPreferableTarget.
func (m *Manager) NetPreferences() (gocv.NetBackendType, gocv.NetTargetType) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return netPreferences(m.activeBackend)
}

func netPreferences(backend Backend) (gocv.NetBackendType, gocv.NetTargetType) {
	switch backend {
	case BackendCUDA:
		return gocv.NetBackendCUDA, gocv.NetTargetCUDA
	case BackendOpenVINO:
		return gocv.NetBackendOpenVINO, gocv.NetTargetCPU
	default:
		return gocv.NetBackendDefault, gocv.NetTargetCPU
	}
}

// detectCUDA detects NVIDIA CUDA availability.
func detectCUDA() *BackendInfo {
	info := &BackendInfo{
		Backend:   BackendCUDA,
		Name:      "NVIDIA CUDA",
		Available: false,
	}

	// Check for nvidia-smi
	cmd := exec.Command("nvidia-smi", "--query-gpu=name,driver_version", "--format=csv,noheader")
	output, err := cmd.Output()
	if err != nil {
		return nil
	}

	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	if len(lines) > 0 && lines[0] != "" {
		parts := strings.Split(lines[0], ",")
		if len(parts) >= 1 {
			info.DeviceName = strings.TrimSpace(parts[0])
		}
		if len(parts) >= 2 {
			info.Version = strings.TrimSpace(parts[1])
		}
		info.DeviceCount = len(lines)
		info.Available = true
	}

	return info
}

// detectOpenVINO detects Intel OpenVINO availability.
func detectOpenVINO() *BackendInfo {
	info := &BackendInfo{
		Backend:   BackendOpenVINO,
		Name:      "Intel OpenVINO",
		Available: false,
	}

	// Check for OpenVINO environment
	openvinoPath := os.Getenv("INTEL_OPENVINO_DIR")
	if openvinoPath == "" {
		// Check common installation paths
		commonPaths := []string{
			"/opt/intel/openvino",
			"/opt/intel/openvino_2024",
			"/opt/intel/openvino_2023",
		}
		for _, p := range commonPaths {
			if _, err := os.Stat(p); err == nil {
				openvinoPath = p
				break
			}
		}
	}

	if openvinoPath == "" {
		return nil
	}

	info.Available = true
	info.Version = getOpenVINOVersion(openvinoPath)

	info.DeviceName = detectIntelDevice()
	if info.DeviceName != "" {
		info.DeviceCount = 1
	}

	return info
}

// getOpenVINOVersion gets the OpenVINO version.
func getOpenVINOVersion(path string) string {
	versionFile := filepath.Join(path, "version.txt")
	if data, err := os.ReadFile(versionFile); err == nil {
		return strings.TrimSpace(string(data))
	}
	return "unknown"
}

// detectIntelDevice detects Intel GPU or NPU.
func detectIntelDevice() string {
	// Check for Intel GPU via /sys
	devices, _ := filepath.Glob("/sys/class/drm/card*/device/vendor")
	for _, dev := range devices {
		vendor, _ := os.ReadFile(dev)
		if strings.TrimSpace(string(vendor)) == "0x8086" { // Intel vendor ID
			deviceDir := filepath.Dir(dev)
			if nameData, err := os.ReadFile(filepath.Join(deviceDir, "device")); err == nil {
				return fmt.Sprintf("Intel GPU (device: %s)", strings.TrimSpace(string(nameData)))
			}
			return "Intel GPU"
		}
	}

	// Check for NPU
	if _, err := os.Stat("/dev/accel/accel0"); err == nil {
		return "Intel NPU"
	}

	return "Intel (CPU inference)"
}

// getCPUName returns the CPU name.
func getCPUName() string {
	data, err := os.ReadFile("/proc/cpuinfo")
	if err != nil {
		return "Unknown CPU"
	}

	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		if strings.HasPrefix(line, "model name") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				return strings.TrimSpace(parts[1])
			}
		}
	}

	return "Unknown CPU"
}

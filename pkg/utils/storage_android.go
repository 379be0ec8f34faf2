//go:build android

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// settingsDirName gdata 在应用数据目录下使用的子目录
const settingsDirName = "settings"

// EnsureStorageDir 确保 Android 上的设置目录存在并可写
// gdata 在 Android 上使用 /data/data/{package}/ 作为根目录，但不会预先创建子目录，
// 必须在 gdata.Open 之前调用。
func EnsureStorageDir() error {
	root := GetStoragePath()
	if root == "" {
		return fmt.Errorf("failed to detect Android package name")
	}

	dir := filepath.Join(root, settingsDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory %s: %w", dir, err)
	}

	probe := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		return fmt.Errorf("settings directory %s is not writable: %w", dir, err)
	}
	return os.Remove(probe)
}

// GetStoragePath 返回应用数据目录 /data/data/{package}
// 包名从 /proc/self/cmdline 读取，失败时返回空字符串
func GetStoragePath() string {
	data, err := os.ReadFile("/proc/self/cmdline")
	if err != nil {
		return ""
	}
	pkg := strings.TrimSpace(strings.Trim(string(data), "\x00"))
	if i := strings.IndexByte(pkg, 0); i >= 0 {
		pkg = pkg[:i]
	}
	if pkg == "" {
		return ""
	}
	return filepath.Join("/data/data", pkg)
}

// Package main implements a small viewer that tails the JSON log files
// written by the Treescape application and prints them in a colored, compact
// format. Typing narrows the output to entries containing the typed filter.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/eiannone/keyboard"
)

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorWhite   = "\033[37m"
)

var (
	logDir      string
	filter      string
	filterMutex sync.RWMutex
)

type LogEntry map[string]interface{}

func main() {
	flag.Usage = func() {
		fmt.Println("Usage: logviewer [-d <log directory>] [-h]")
		fmt.Println("\nMonitors all *.log files in the directory, parses JSON entries")
		fmt.Println("and displays them colorized. Type to filter, backspace to erase,")
		fmt.Println("Ctrl-C to exit.")
	}
	flag.StringVar(&logDir, "d", "./logs", "log directory to monitor")
	flag.Parse()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := keyboard.Open(); err == nil {
		defer keyboard.Close()
		go readFilterKeys()
	} else {
		fmt.Printf("%sKeyboard filter unavailable: %v%s\n", colorYellow, err, colorReset)
	}

	go monitorLogs()

	<-sigChan
	fmt.Println("\nExiting...")
}

// readFilterKeys updates the filter string from typed characters.
func readFilterKeys() {
	for {
		char, key, err := keyboard.GetKey()
		if err != nil {
			return
		}
		filterMutex.Lock()
		switch key {
		case keyboard.KeyBackspace, keyboard.KeyBackspace2:
			if len(filter) > 0 {
				filter = filter[:len(filter)-1]
			}
		case keyboard.KeySpace:
			filter += " "
		default:
			if char != 0 {
				filter += string(char)
			}
		}
		current := filter
		filterMutex.Unlock()
		fmt.Printf("%sFilter: %q%s\n", colorCyan, current, colorReset)
	}
}

// monitorLogs tails every *.log file in the directory and prints new entries.
func monitorLogs() {
	filePositions := make(map[string]int64)

	for {
		logFiles, err := filepath.Glob(filepath.Join(logDir, "*.log"))
		if err != nil {
			fmt.Printf("%sError reading log directory: %v%s\n", colorRed, err, colorReset)
			time.Sleep(time.Second)
			continue
		}

		for _, filePath := range logFiles {
			pos, err := tailFile(filePath, filePositions[filePath])
			if err != nil {
				fmt.Printf("%sError reading %s: %v%s\n", colorRed, filepath.Base(filePath), err, colorReset)
				continue
			}
			filePositions[filePath] = pos
		}

		time.Sleep(250 * time.Millisecond)
	}
}

// tailFile prints the entries appended to one file since the last position.
func tailFile(filePath string, position int64) (int64, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return position, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return position, err
	}
	if stat.Size() < position {
		// Truncated; start over.
		position = 0
	}
	if _, err := file.Seek(position, io.SeekStart); err != nil {
		return position, err
	}

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var entry LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		formatted := formatLogEntry(entry)

		filterMutex.RLock()
		currentFilter := filter
		filterMutex.RUnlock()
		if currentFilter == "" || strings.Contains(strings.ToLower(formatted), strings.ToLower(currentFilter)) {
			fmt.Println(formatted)
		}
	}
	if err := scanner.Err(); err != nil {
		return position, err
	}
	return file.Seek(0, io.SeekCurrent)
}

func formatLogEntry(entry LogEntry) string {
	timestamp, _ := entry["time"].(string)
	level, _ := entry["level"].(string)
	msg, _ := entry["msg"].(string)

	var levelColor string
	switch strings.ToUpper(level) {
	case "DEBUG":
		levelColor = colorBlue
	case "INFO":
		levelColor = colorGreen
	case "WARN":
		levelColor = colorYellow
	case "ERROR":
		levelColor = colorRed
	default:
		levelColor = colorWhite
	}

	formatted := fmt.Sprintf("%s%s%s %s%s%s %s",
		colorMagenta, formatTimestamp(timestamp), colorReset,
		levelColor, padRight(strings.ToUpper(level), 5), colorReset,
		msg)

	for key, value := range entry {
		if key != "time" && key != "level" && key != "msg" {
			formatted += fmt.Sprintf("\n    %s%s:%s %v", colorCyan, key, colorReset, value)
		}
	}
	return formatted
}

func formatTimestamp(timestamp string) string {
	t, err := time.Parse(time.RFC3339Nano, timestamp)
	if err != nil {
		return timestamp // Return original if parsing fails
	}
	return t.Format("06-01-02 15:04:05.000000")
}

func padRight(str string, length int) string {
	if len(str) >= length {
		return str
	}
	return str + strings.Repeat(" ", length-len(str))
}

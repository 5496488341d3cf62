package source

import (
	"fmt"
	"os"
	"time"

	"go.bug.st/serial"
)

// SerialConfig параметры последовательного порта
type SerialConfig struct {
	Port        string
	BaudRate    int
	ReadTimeout time.Duration
	Settle      time.Duration
}

// SerialSource читает строки из последовательного порта
type SerialSource struct {
	port serial.Port
	*LineReader
}

// OpenSerial открывает порт и ждет, пока плата перезагрузится
func OpenSerial(cfg SerialConfig) (*SerialSource, error) {
	port, err := serial.Open(cfg.Port, &serial.Mode{BaudRate: cfg.BaudRate})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Port, err)
	}

	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}

	if cfg.Settle > 0 {
		time.Sleep(cfg.Settle)
		if err := port.ResetInputBuffer(); err != nil {
			port.Close()
			return nil, fmt.Errorf("failed to reset input buffer: %w", err)
		}
	}

	return &SerialSource{port: port, LineReader: NewLineReader(port)}, nil
}

// Close закрывает порт, прерывая текущее чтение
func (s *SerialSource) Close() error {
	return s.port.Close()
}

// FileSource воспроизводит ранее записанный поток из файла
type FileSource struct {
	f *os.File
	*LineReader
}

// OpenFile открывает файл для воспроизведения
func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay file: %w", err)
	}
	return &FileSource{f: f, LineReader: NewLineReader(f)}, nil
}

// Close закрывает файл
func (s *FileSource) Close() error {
	return s.f.Close()
}

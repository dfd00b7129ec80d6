package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category — тип фотографий в архиве.
type Category string

const (
	CategoryModel     Category = "model"
	CategoryLandscape Category = "landscape"
)

// dirName — имя подпапки категории внутри года.
func (c Category) dirName() string {
	if c == CategoryModel {
		return "models"
	}
	return "landscape"
}

// Store — файловый архив: <root>/user_<id>/<year>/{models,landscape}/<subkey>/*.jpg
// Папки создаются лениво при первом обращении и никогда не удаляются.
type Store struct {
	Root string
}

func New(root string) *Store { return &Store{Root: root} }

func (s *Store) userDir(userID int64) string {
	return filepath.Join(s.Root, fmt.Sprintf("user_%d", userID))
}

func (s *Store) yearDir(userID int64, year int) string {
	return filepath.Join(s.userDir(userID), strconv.Itoa(year))
}

func (s *Store) subkeyDir(userID int64, year int, cat Category, subkey string) string {
	return filepath.Join(s.yearDir(userID, year), cat.dirName(), subkey)
}

// EnsureUser создаёт корневую папку пользователя.
func (s *Store) EnsureUser(userID int64) error {
	return os.MkdirAll(s.userDir(userID), 0o755)
}

// EnsureYear создаёт скелет года: саму папку и обе категории.
func (s *Store) EnsureYear(userID int64, year int) error {
	base := s.yearDir(userID, year)
	for _, d := range []string{base, filepath.Join(base, "models"), filepath.Join(base, "landscape")} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// EnsureSubkey создаёт папку модели или месяца.
func (s *Store) EnsureSubkey(userID int64, year int, cat Category, subkey string) error {
	return os.MkdirAll(s.subkeyDir(userID, year, cat, subkey), 0o755)
}

// ListYears возвращает годы пользователя по убыванию. Отсутствие папки — пустой архив.
func (s *Store) ListYears(userID int64) ([]int, error) {
	entries, err := os.ReadDir(s.userDir(userID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var years []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if y, err := strconv.Atoi(e.Name()); err == nil {
			years = append(years, y)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

// ListSubkeys возвращает имена моделей (отсортированы) либо номера месяцев
// (как строки, по возрастанию числа) внутри года.
func (s *Store) ListSubkeys(userID int64, year int, cat Category) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.yearDir(userID, year), cat.dirName()))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			keys = append(keys, e.Name())
		}
	}
	if cat == CategoryLandscape {
		sort.Slice(keys, func(i, j int) bool {
			a, _ := strconv.Atoi(keys[i])
			b, _ := strconv.Atoi(keys[j])
			return a < b
		})
	} else {
		sort.Strings(keys)
	}
	return keys, nil
}

// ListPhotos возвращает имена файлов фотографий внутри (год, категория, подключ).
func (s *Store) ListPhotos(userID int64, year int, cat Category, subkey string) ([]string, error) {
	entries, err := os.ReadDir(s.subkeyDir(userID, year, cat, subkey))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && isPhotoName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// PhotoPath — абсолютный путь к сохранённой фотографии.
func (s *Store) PhotoPath(userID int64, year int, cat Category, subkey, name string) string {
	return filepath.Join(s.subkeyDir(userID, year, cat, subkey), name)
}

// HasAny сообщает, есть ли в году хотя бы одна непустая папка категории.
func (s *Store) HasAny(userID int64, year int, cat Category) (bool, error) {
	keys, err := s.ListSubkeys(userID, year, cat)
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		photos, err := s.ListPhotos(userID, year, cat, k)
		if err != nil {
			return false, err
		}
		if len(photos) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// PutPhoto сохраняет фотографию под именем из метки времени (микросекундное
// разрешение); при коллизии имени добавляется короткий uuid-суффикс.
// Возвращает имя созданного файла.
func (s *Store) PutPhoto(userID int64, year int, cat Category, subkey string, data []byte) (string, error) {
	dir := s.subkeyDir(userID, year, cat, subkey)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	now := time.Now()
	base := now.Format("20060102_150405") + fmt.Sprintf("_%06d", now.Nanosecond()/1000)

	name := base + ".jpg"
	err := writeExclusive(filepath.Join(dir, name), data)
	if errors.Is(err, os.ErrExist) {
		name = base + "_" + uuid.NewString()[:8] + ".jpg"
		err = writeExclusive(filepath.Join(dir, name), data)
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

// CountAll — полный рекурсивный подсчёт фотографий пользователя.
// Дорогой (O(всех файлов)), зовётся один раз на серию загрузок.
func (s *Store) CountAll(userID int64) (int, error) {
	total := 0
	years, err := s.ListYears(userID)
	if err != nil {
		return 0, err
	}
	for _, y := range years {
		for _, cat := range []Category{CategoryModel, CategoryLandscape} {
			keys, err := s.ListSubkeys(userID, y, cat)
			if err != nil {
				return 0, err
			}
			for _, k := range keys {
				photos, err := s.ListPhotos(userID, y, cat, k)
				if err != nil {
					return 0, err
				}
				total += len(photos)
			}
		}
	}
	return total, nil
}

func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func isPhotoName(name string) bool {
	n := strings.ToLower(name)
	return strings.HasSuffix(n, ".jpg") || strings.HasSuffix(n, ".jpeg") || strings.HasSuffix(n, ".png")
}

package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFindSidecar_Direct(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "IMG_0001.jpg")
	sidecar := media + ".json"
	os.WriteFile(media, []byte("x"), 0644)
	os.WriteFile(sidecar, []byte("{}"), 0644)

	if got := FindSidecar(media); got != sidecar {
		t.Errorf("Expected %s, got %s", sidecar, got)
	}
}

func TestFindSidecar_ParenthesizedIndex(t *testing.T) {
	dir := t.TempDir()
	// IMG(1).jpg pairs with IMG.jpg(1).json
	media := filepath.Join(dir, "IMG(1).jpg")
	sidecar := filepath.Join(dir, "IMG.jpg(1).json")
	os.WriteFile(media, []byte("x"), 0644)
	os.WriteFile(sidecar, []byte("{}"), 0644)

	if got := FindSidecar(media); got != sidecar {
		t.Errorf("Expected %s, got %s", sidecar, got)
	}
}

func TestFindSidecar_ExtraToken(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "IMG_0002.jpg")
	sidecar := filepath.Join(dir, "IMG_0002.jpg.supplemental-metadata.json")
	os.WriteFile(media, []byte("x"), 0644)
	os.WriteFile(sidecar, []byte("{}"), 0644)

	if got := FindSidecar(media); got != sidecar {
		t.Errorf("Expected %s, got %s", sidecar, got)
	}
}

func TestFindSidecar_Missing(t *testing.T) {
	dir := t.TempDir()
	media := filepath.Join(dir, "IMG_0003.jpg")
	os.WriteFile(media, []byte("x"), 0644)

	if got := FindSidecar(media); got != "" {
		t.Errorf("Expected no sidecar, got %s", got)
	}
}

func TestSidecarTakenTime(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.json")

	// string-encoded timestamp
	os.WriteFile(path, []byte(`{"photoTakenTime":{"timestamp":"1600000000"}}`), 0644)
	sc, err := LoadSidecar(path)
	if err != nil {
		t.Fatalf("LoadSidecar failed: %v", err)
	}
	taken, ok := sc.TakenTime()
	if !ok {
		t.Fatal("Expected taken time")
	}
	if !taken.Equal(time.Unix(1600000000, 0)) {
		t.Errorf("Expected %v, got %v", time.Unix(1600000000, 0), taken)
	}

	// integer-encoded timestamp
	os.WriteFile(path, []byte(`{"photoTakenTime":{"timestamp":1600000001}}`), 0644)
	sc, err = LoadSidecar(path)
	if err != nil {
		t.Fatalf("LoadSidecar failed: %v", err)
	}
	if taken, ok := sc.TakenTime(); !ok || !taken.Equal(time.Unix(1600000001, 0)) {
		t.Errorf("Expected integer timestamp to parse, got %v (%v)", taken, ok)
	}

	// unparseable timestamp falls through without error
	os.WriteFile(path, []byte(`{"photoTakenTime":{"timestamp":"soon"}}`), 0644)
	sc, err = LoadSidecar(path)
	if err != nil {
		t.Fatalf("LoadSidecar failed: %v", err)
	}
	if _, ok := sc.TakenTime(); ok {
		t.Error("Expected unparseable timestamp to be absent")
	}
}

func TestSidecarTags_GPS(t *testing.T) {
	sc := &Sidecar{}
	sc.GeoDataExif = &struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Altitude  float64 `json:"altitude"`
	}{Latitude: -33.8688, Longitude: 151.2093, Altitude: 19.5}

	tags := sidecarTags(sc, nil)
	want := map[string]string{
		"GPSLatitude":     "33.8688",
		"GPSLatitudeRef":  "S",
		"GPSLongitude":    "151.2093",
		"GPSLongitudeRef": "E",
		"GPSAltitude":     "19.5",
		"GPSAltitudeRef":  "0",
	}
	if diff := cmp.Diff(want, tags); diff != "" {
		t.Errorf("sidecarTags mismatch (-want +got):\n%s", diff)
	}
}

func TestSidecarTags_ZeroCoordinatesSkipped(t *testing.T) {
	sc := &Sidecar{}
	sc.GeoDataExif = &struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Altitude  float64 `json:"altitude"`
	}{}

	tags := sidecarTags(sc, nil)
	if len(tags) != 0 {
		t.Errorf("Expected no tags for zero coordinates, got %v", tags)
	}
}

func TestMergePeopleComment(t *testing.T) {
	merged, changed := mergePeopleComment("", []string{"Ana", "Bob"})
	if !changed {
		t.Fatal("Expected first merge to change the comment")
	}
	if !strings.Contains(merged, "<Person>Ana</Person>") || !strings.Contains(merged, "<Person>Bob</Person>") {
		t.Errorf("Expected both people in comment, got %s", merged)
	}

	// merging the same names again is a no-op
	again, changed := mergePeopleComment(merged, []string{"Ana", "Bob"})
	if changed {
		t.Errorf("Expected repeated merge to be unchanged, got %s", again)
	}

	// new name is appended, existing ones kept
	more, changed := mergePeopleComment(merged, []string{"Cid"})
	if !changed {
		t.Fatal("Expected new name to change the comment")
	}
	for _, name := range []string{"Ana", "Bob", "Cid"} {
		if !strings.Contains(more, "<Person>"+name+"</Person>") {
			t.Errorf("Expected %s in merged comment, got %s", name, more)
		}
	}
}

func TestMergePeopleComment_PreservesFreeText(t *testing.T) {
	merged, changed := mergePeopleComment("shot on holiday", []string{"Ana"})
	if !changed {
		t.Fatal("Expected merge to change the comment")
	}
	if !strings.Contains(merged, "<note>shot on holiday</note>") {
		t.Errorf("Expected original text preserved as note, got %s", merged)
	}
	if !strings.Contains(merged, "<Person>Ana</Person>") {
		t.Errorf("Expected person appended, got %s", merged)
	}
}

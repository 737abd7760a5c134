package internal

import (
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Sidecar is the companion JSON written by photo-service exports. Only the
// fields the pipeline consumes are modeled.
type Sidecar struct {
	PhotoTakenTime *struct {
		Timestamp epochSeconds `json:"timestamp"`
	} `json:"photoTakenTime"`
	GeoDataExif *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Altitude  float64 `json:"altitude"`
	} `json:"geoDataExif"`
	People []struct {
		Name string `json:"name"`
	} `json:"people"`
}

// epochSeconds tolerates both string and integer timestamp encodings.
type epochSeconds struct {
	value int64
	ok    bool
}

func (e *epochSeconds) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// unparseable timestamps fall through to the metadata chain
		return nil
	}
	e.value = v
	e.ok = true
	return nil
}

// TakenTime returns the export-recorded capture time, if present and parseable.
func (s *Sidecar) TakenTime() (time.Time, bool) {
	if s == nil || s.PhotoTakenTime == nil || !s.PhotoTakenTime.Timestamp.ok {
		return time.Time{}, false
	}
	return time.Unix(s.PhotoTakenTime.Timestamp.value, 0), true
}

func LoadSidecar(path string) (*Sidecar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// FindSidecar locates the companion JSON for a media file. The common case is
// "<file>.json". Export processes also produce parenthesized duplicate-index
// names ("IMG(1).jpg" pairs with "IMG.jpg(1).json") and variants with extra
// tokens between the filename and ".json".
func FindSidecar(mediaPath string) string {
	if fileExists(mediaPath + ".json") {
		return mediaPath + ".json"
	}

	dir := filepath.Dir(mediaPath)
	base := filepath.Base(mediaPath)
	ext := filepath.Ext(base)

	if start := strings.Index(base, "("); start >= 0 {
		if end := strings.Index(base, ")"); end > start {
			// IMG(1).jpg -> IMG.jpg(1).json
			stem := base[:start]
			num := base[start+1 : end]
			candidate := filepath.Join(dir, stem+ext+"("+num+").json")
			if fileExists(candidate) {
				return candidate
			}
		}
	}

	// Extra tokens: IMG.jpg.suppl.json and the like.
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, base+".") && strings.HasSuffix(name, ".json") {
			return filepath.Join(dir, name)
		}
	}
	return ""
}

// sidecarTags derives the tag set a sidecar contributes to its media file:
// capture-date fields, GPS coordinates with hemisphere references, and the
// people list merged into the structured UserComment. existing is the file's
// current tag map, used for the comment merge.
func sidecarTags(sc *Sidecar, existing map[string]string) map[string]string {
	tags := make(map[string]string)
	if sc == nil {
		return tags
	}

	if taken, ok := sc.TakenTime(); ok {
		date := taken.Format(dateLayoutDefault)
		for _, field := range exifDateFields {
			tags[field] = date
		}
	}

	if len(sc.People) > 0 {
		names := make([]string, 0, len(sc.People))
		for _, p := range sc.People {
			names = append(names, p.Name)
		}
		if merged, changed := mergePeopleComment(existing["UserComment"], names); changed {
			tags["UserComment"] = merged
		}
	}

	if geo := sc.GeoDataExif; geo != nil && geo.Latitude != 0 && geo.Longitude != 0 {
		lat, latRef := geo.Latitude, "N"
		if lat < 0 {
			lat, latRef = -lat, "S"
		}
		lon, lonRef := geo.Longitude, "E"
		if lon < 0 {
			lon, lonRef = -lon, "W"
		}
		tags["GPSLatitude"] = formatFloat(lat)
		tags["GPSLatitudeRef"] = latRef
		tags["GPSLongitude"] = formatFloat(lon)
		tags["GPSLongitudeRef"] = lonRef
		tags["GPSAltitude"] = formatFloat(geo.Altitude)
		if geo.Altitude > 0 {
			tags["GPSAltitudeRef"] = "0"
		} else {
			tags["GPSAltitudeRef"] = "1"
		}
	}

	return tags
}

// userComment is the structured form people data is stored in inside the
// free-text UserComment tag. Pre-existing unstructured content is preserved
// under note.
type userComment struct {
	XMLName xml.Name    `xml:"UserComment"`
	Note    string      `xml:"note,omitempty"`
	People  *peopleList `xml:"People,omitempty"`
}

type peopleList struct {
	Person []string `xml:"Person"`
}

// mergePeopleComment folds names into an existing UserComment value without
// duplicating entries on repeated runs. Returns the merged comment and
// whether it differs from the current one.
func mergePeopleComment(current string, names []string) (string, bool) {
	var uc userComment
	if current != "" {
		if err := xml.Unmarshal([]byte(current), &uc); err != nil {
			// not our XML; keep the old comment as a note
			uc = userComment{Note: current}
		}
	}
	if uc.People == nil {
		uc.People = &peopleList{}
	}

	seen := make(map[string]bool, len(uc.People.Person))
	for _, p := range uc.People.Person {
		seen[p] = true
	}
	added := false
	for _, n := range names {
		if !seen[n] {
			uc.People.Person = append(uc.People.Person, n)
			seen[n] = true
			added = true
		}
	}
	if !added {
		return current, false
	}

	out, err := xml.Marshal(uc)
	if err != nil {
		return current, false
	}
	return string(out), true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

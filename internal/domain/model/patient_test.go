package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/skinalyze/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const patientJSON = `{
  "id": "p-100",
  "name": "Ada Lovelace",
  "fitzpatrickType": 3,
  "diagnoses": [{
    "condition": "Melanocytic Nevus",
    "date": "October 30, 2025 at 04:23 PM",
    "riskLevel": "Low Risk",
    "confidence": 86,
    "metrics": {"asymmetry": 97, "diameter": "9.0", "evolution": "Absent", "vessels": null}
  }],
  "progressEntries": [
    {"date": "Oct 31, 2025", "score": 65, "title": "Healing Progress", "trend": "stable"},
    {"date": "Nov 4, 2025", "score": 74, "trend": "up", "metrics": {"lesionSize": 4.2}}
  ]
}`

func TestPatientDecoding(t *testing.T) {
	Convey("Given a patient document with mixed metric kinds", t, func() {
		var p model.Patient
		err := json.Unmarshal([]byte(patientJSON), &p)

		Convey("Then it decodes without error", func() {
			So(err, ShouldBeNil)
			So(p.ID, ShouldEqual, "p-100")
			So(string(p.FitzpatrickType), ShouldEqual, "3")
			So(p.Diagnoses, ShouldHaveLength, 1)
			So(p.ProgressEntries, ShouldHaveLength, 2)
		})

		Convey("And numeric metrics stay numeric", func() {
			v := p.Diagnoses[0].Metrics[model.MetricAsymmetry]
			f, ok := v.Float()
			So(ok, ShouldBeTrue)
			So(f, ShouldEqual, 97.0)
			So(v.String(), ShouldEqual, "97")
		})

		Convey("And text metrics keep their exact text", func() {
			So(p.Diagnoses[0].Metrics[model.MetricDiameter].String(), ShouldEqual, "9.0")
			_, ok := p.Diagnoses[0].Metrics[model.MetricEvolution].Float()
			So(ok, ShouldBeFalse)
		})

		Convey("And null metrics are absent", func() {
			So(p.Diagnoses[0].Metrics[model.MetricVessels].Present(), ShouldBeFalse)
		})

		Convey("And confidence is optional", func() {
			So(p.Diagnoses[0].Confidence, ShouldNotBeNil)
			So(*p.Diagnoses[0].Confidence, ShouldEqual, 86.0)
		})
	})
}

func TestSkinType(t *testing.T) {
	Convey("Given Fitzpatrick types in different encodings", t, func() {
		var a, b, c model.SkinType
		So(json.Unmarshal([]byte(`"III"`), &a), ShouldBeNil)
		So(json.Unmarshal([]byte(`4`), &b), ShouldBeNil)
		So(json.Unmarshal([]byte(`null`), &c), ShouldBeNil)

		Convey("Then all decode to their string form", func() {
			So(string(a), ShouldEqual, "III")
			So(string(b), ShouldEqual, "4")
			So(string(c), ShouldEqual, "")
		})

		Convey("And objects are rejected", func() {
			var d model.SkinType
			So(json.Unmarshal([]byte(`{}`), &d), ShouldNotBeNil)
		})
	})
}

func TestMetricValue(t *testing.T) {
	Convey("Given metric values", t, func() {
		Convey("When decoding booleans and objects", func() {
			var b, o model.MetricValue
			So(json.Unmarshal([]byte(`true`), &b), ShouldBeNil)
			So(json.Unmarshal([]byte(`{ "a" : 1 }`), &o), ShouldBeNil)

			Convey("Then they are kept as text", func() {
				So(b.String(), ShouldEqual, "true")
				So(o.String(), ShouldEqual, `{"a":1}`)
			})
		})

		Convey("When encoding", func() {
			out, err := json.Marshal(map[string]model.MetricValue{
				"n": model.Number(9.5),
				"t": model.Text("Absent"),
				"z": {},
			})

			Convey("Then each kind keeps its JSON type", func() {
				So(err, ShouldBeNil)
				So(string(out), ShouldEqual, `{"n":9.5,"t":"Absent","z":null}`)
			})
		})
	})
}

func TestLooseNumbers(t *testing.T) {
	Convey("Given records whose numbers arrive in different shapes", t, func() {
		var p model.Patient
		err := json.Unmarshal([]byte(`{
		  "id": "p-7",
		  "diagnoses": [
		    {"confidence": "92"},
		    {"confidence": " 71.5 "},
		    {"confidence": "high"},
		    {"confidence": true},
		    {"confidence": null},
		    {"confidence": "NaN"},
		    {"confidence": 0}
		  ],
		  "progressEntries": [
		    {"score": "81"},
		    {"score": "n/a"},
		    {"score": {"v": 1}},
		    {}
		  ]
		}`), &p)

		Convey("Then decoding never fails", func() {
			So(err, ShouldBeNil)
			So(p.Diagnoses, ShouldHaveLength, 7)
			So(p.ProgressEntries, ShouldHaveLength, 4)
		})

		Convey("And numeric strings become numbers", func() {
			So(*p.Diagnoses[0].Confidence, ShouldEqual, 92.0)
			So(*p.Diagnoses[1].Confidence, ShouldEqual, 71.5)
			So(p.ProgressEntries[0].Score, ShouldEqual, 81.0)
		})

		Convey("And anything else leaves confidence absent", func() {
			for _, d := range p.Diagnoses[2:6] {
				So(d.Confidence, ShouldBeNil)
			}
		})

		Convey("And a present zero confidence is kept", func() {
			So(p.Diagnoses[6].Confidence, ShouldNotBeNil)
			So(*p.Diagnoses[6].Confidence, ShouldEqual, 0.0)
		})

		Convey("And unusable scores are zero", func() {
			for _, e := range p.ProgressEntries[1:] {
				So(e.Score, ShouldEqual, 0.0)
			}
		})
	})
}

func TestParseDate(t *testing.T) {
	Convey("Given a zone west of UTC", t, func() {
		la, err := time.LoadLocation("America/Los_Angeles")
		So(err, ShouldBeNil)

		Convey("When parsing dates without a zone", func() {
			day, ok1 := model.ParseDate("2025-10-30", la)
			local, ok2 := model.ParseDate("2025-10-30T16:23:00", la)
			long, ok3 := model.ParseDate("November 4, 2025", la)

			Convey("Then they are read in that zone", func() {
				So(ok1 && ok2 && ok3, ShouldBeTrue)
				So(day.Format("2006-01-02 15:04 MST"), ShouldEqual, "2025-10-30 00:00 PDT")
				So(local.Format("15:04"), ShouldEqual, "16:23")
				So(long.Format("Jan 2, 2006"), ShouldEqual, "Nov 4, 2025")
			})
		})

		Convey("When parsing a zoned timestamp", func() {
			ts, ok := model.ParseDate("2025-10-30T16:23:00Z", la)

			Convey("Then the instant is kept and shown in the zone", func() {
				So(ok, ShouldBeTrue)
				So(ts.Equal(time.Date(2025, 10, 30, 16, 23, 0, 0, time.UTC)), ShouldBeTrue)
				So(ts.Location(), ShouldEqual, la)
			})
		})

		Convey("When parsing empty or unknown input", func() {
			_, ok1 := model.ParseDate("  ", la)
			_, ok2 := model.ParseDate("yesterday", la)

			Convey("Then nothing is parsed", func() {
				So(ok1, ShouldBeFalse)
				So(ok2, ShouldBeFalse)
			})
		})

		Convey("When no zone is given", func() {
			ts, ok := model.ParseDate("2025-10-30", nil)

			Convey("Then UTC is used", func() {
				So(ok, ShouldBeTrue)
				So(ts.Location(), ShouldEqual, time.UTC)
			})
		})
	})
}

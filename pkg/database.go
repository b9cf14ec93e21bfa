package optsim

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
	_ "github.com/mattn/go-sqlite3"
)

// ConnectToDatabase opens the calibration database. For sqlite3 dbname is the
// database file (or ":memory:") and the other arguments are ignored.
func ConnectToDatabase(driver, user, pass, host, dbname string) (*sqlx.DB, error) {
	switch driver {
	case DriverSQLite:
		return sqlx.Connect(DriverSQLite, dbname)
	case DriverMySQL, "":
		port := "3306"
		dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
		return sqlx.Connect(DriverMySQL, dbURI)
	default:
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
}

// SensorMapping translates between geometry copy numbers and sensor ids.
type SensorMapping struct {
	ToSensorID map[int]int
	ToCopy     map[int]int
}

func NewSensorMapping() SensorMapping {
	return SensorMapping{
		ToSensorID: make(map[int]int),
		ToCopy:     make(map[int]int),
	}
}

func (m SensorMapping) Add(copyNo, sensorID int) {
	m.ToSensorID[copyNo] = sensorID
	m.ToCopy[sensorID] = copyNo
}

// SensorID returns the sensor id of a copy number, or the copy number itself
// when the mapping does not know it.
func (m SensorMapping) SensorID(copyNo int) int {
	if id, ok := m.ToSensorID[copyNo]; ok {
		return id
	}
	return copyNo
}

// ChannelMap holds one SensorMapping per sensitive detector.
type ChannelMap map[string]SensorMapping

func (c ChannelMap) SensorID(detector string, copyNo int) int {
	m, ok := c[detector]
	if !ok {
		return copyNo
	}
	return m.SensorID(copyNo)
}

type SensorMappingEntry struct {
	Detector string `db:"Detector"`
	ElecID   int    `db:"ElecID"`
	SensorID int    `db:"SensorID"`
}

type responsePoint struct {
	Curve  string  `db:"Curve"`
	Energy float64 `db:"Energy"`
	Value  float64 `db:"Value"`
}

// Calibration is what the database provides for one run.
type Calibration struct {
	Curves   CurveSet
	Channels ChannelMap
}

// LoadCalibration reads the response curves and the channel map valid for runNumber.
func LoadCalibration(db *sqlx.DB, runNumber int, verbosity int, logger Logger) (Calibration, error) {
	logger = loggerOrNop(logger)
	curves, err := getCurvesFromDB(db, runNumber, verbosity, logger)
	if err != nil {
		errMessage := fmt.Errorf("error getting response curves from database: %w", err)
		logger.Error(errMessage.Error())
		return Calibration{}, errMessage
	}
	channels, err := getChannelsFromDB(db, runNumber, verbosity, logger)
	if err != nil {
		errMessage := fmt.Errorf("error getting channel map from database: %w", err)
		logger.Error(errMessage.Error())
		return Calibration{}, errMessage
	}
	return Calibration{Curves: curves, Channels: channels}, nil
}

func getCurvesFromDB(db *sqlx.DB, runNumber int, verbosity int, logger Logger) (CurveSet, error) {
	query := "SELECT Curve, Energy, Value FROM SpectralResponse WHERE MinRun <= ? AND MaxRun >= ? ORDER BY Curve, Energy"
	if verbosity > 0 {
		logger.Info("Reading spectral response curves from database", "database")
	}
	if verbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s [run %d]", query, runNumber), "database")
	}

	rows, err := db.Queryx(query, runNumber, runNumber)
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	points := make(map[string][]ControlPoint)
	order := []string{}
	for rows.Next() {
		result := responsePoint{}
		if err := rows.StructScan(&result); err != nil {
			return nil, fmt.Errorf("error scanning DB row: %w", err)
		}
		if _, seen := points[result.Curve]; !seen {
			order = append(order, result.Curve)
		}
		points[result.Curve] = append(points[result.Curve], ControlPoint{Energy: result.Energy, Value: result.Value})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading DB rows: %w", err)
	}

	curves := make(CurveSet, len(order))
	for _, name := range order {
		c, err := NewSpectralResponseCurve(name, points[name])
		if err != nil {
			return nil, err
		}
		curves[name] = c
	}
	return curves, nil
}

func getChannelsFromDB(db *sqlx.DB, runNumber int, verbosity int, logger Logger) (ChannelMap, error) {
	query := "SELECT Detector, ElecID, SensorID FROM ChannelMapping WHERE MinRun <= ? AND MaxRun >= ? ORDER BY SensorID"
	if verbosity > 0 {
		logger.Info("Channel mapping read from DB", "database")
	}
	if verbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s [run %d]", query, runNumber), "database")
	}

	rows, err := db.Queryx(query, runNumber, runNumber)
	if err != nil {
		return nil, fmt.Errorf("error querying database: %w", err)
	}
	defer rows.Close()

	channels := ChannelMap{}
	for rows.Next() {
		result := SensorMappingEntry{}
		if err := rows.StructScan(&result); err != nil {
			return nil, fmt.Errorf("error scanning DB row: %w", err)
		}
		m, ok := channels[result.Detector]
		if !ok {
			m = NewSensorMapping()
			channels[result.Detector] = m
		}
		m.Add(result.ElecID, result.SensorID)
	}
	return channels, rows.Err()
}

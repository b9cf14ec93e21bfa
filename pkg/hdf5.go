package optsim

import (
	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// STRLEN is the fixed length of string columns.
const STRLEN = 20

// tableChunk is the chunk length of every table.
const tableChunk = 32768

type RunInfoHDF5 struct {
	run_number int32
	seed       uint64
}

type EventDataHDF5 struct {
	evt_number      int32
	cerenkov_all    int32
	cerenkov_quartz int32
	scintillation   int32
	nhit_pmt        int32
	nhit_mppc       int32
	ndetected       int32
	has_error       int8
}

type BeamHDF5 struct {
	evt_number int32
	pdg        int32
	energy     float64
	mom_x      float64
	mom_y      float64
	mom_z      float64
	pos_x      float64
	pos_y      float64
	pos_z      float64
}

type HitHDF5 struct {
	evt_number  int32
	copy_no     int32
	sensor_id   int32
	particle_id int32
	energy      float64
	wave_length float64
	time        float64
	pos_x       float64
	pos_y       float64
	pos_z       float64
	local_x     float64
	local_y     float64
	local_z     float64
	detect_flag int8
}

type SensorMappingHDF5 struct {
	channel  int32
	sensorID int32
}

type CurvePointHDF5 struct {
	curve  string
	energy float64
	value  float64
}

func openFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		return nil, &ErrCreateGroup{GroupName: groupName, Err: err}
	}
	return g, nil
}

// table is an extendible one dimensional dataset of compound rows. rows
// tracks how many rows are already in the file.
type table struct {
	name    string
	dataset *hdf5.Dataset
	rows    int
}

func createTable(group *hdf5.Group, name string, datatype interface{}, compressionLevel int) (*table, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	if err := plist.SetChunk([]uint{tableChunk}); err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	if compressionLevel > 0 {
		if err := plist.SetDeflate(compressionLevel); err != nil {
			return nil, &ErrCreateTable{TableName: name, Err: err}
		}
	}

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return &table{name: name, dataset: dset}, nil
}

func writeEntryToTable[T any](t *table, data T) error {
	array := []T{data}
	return writeArrayToTable(t, &array)
}

// writeArrayToTable appends rows to the table. Empty slices are skipped,
// a zero length hyperslab is rejected by the library.
func writeArrayToTable[T any](t *table, data *[]T) error {
	length := uint(len(*data))
	if length == 0 {
		return nil
	}
	dataspace, err := hdf5.CreateSimpleDataspace([]uint{length}, nil)
	if err != nil {
		return &ErrWriteTable{TableName: t.name, Row: t.rows, Err: err}
	}
	defer dataspace.Close()

	rowsInFile := uint(t.rows)
	if err := t.dataset.Resize([]uint{rowsInFile + length}); err != nil {
		return &ErrWriteTable{TableName: t.name, Row: t.rows, Err: err}
	}
	filespace := t.dataset.Space()
	defer filespace.Close()

	start := []uint{rowsInFile}
	count := []uint{length}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return &ErrWriteTable{TableName: t.name, Row: t.rows, Err: err}
	}

	if err := t.dataset.WriteSubset(data, dataspace, filespace); err != nil {
		return &ErrWriteTable{TableName: t.name, Row: t.rows, Err: err}
	}
	t.rows += int(length)
	return nil
}

func (t *table) Close() error {
	if t == nil {
		return nil
	}
	return t.dataset.Close()
}

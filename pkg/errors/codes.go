package errors

// ErrorCode is a string identifier for a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes
const (
	ErrCodeInternal       ErrorCode = "COMMON_001"
	ErrCodeInvalidParam   ErrorCode = "COMMON_002"
	ErrCodeNotFound       ErrorCode = "COMMON_003"
	ErrCodeValidation     ErrorCode = "COMMON_004"
	ErrCodeNotImplemented ErrorCode = "COMMON_005"
	ErrCodeUnknown        ErrorCode = "COMMON_999"
	CodeOK                ErrorCode = "OK"
)

// Configuration error codes
const (
	// ErrCodeConfigInvalid marks an unreadable, undecodable or semantically
	// invalid configuration.
	ErrCodeConfigInvalid ErrorCode = "CONF_001"
)

// Molecule error codes
const (
	// ErrCodeInvalidSMILES marks a SMILES string that could not be parsed
	// into a molecular graph.
	ErrCodeInvalidSMILES ErrorCode = "MOL_001"

	// ErrCodeFingerprintFailed marks a failure while generating a molecular
	// fingerprint.
	ErrCodeFingerprintFailed ErrorCode = "MOL_002"

	// ErrCodeMCSFailed marks a failure inside the maximum-common-substructure
	// search.
	ErrCodeMCSFailed ErrorCode = "MOL_003"
)

// Similarity error codes
const (
	// ErrCodeUnknownMetric marks a registry lookup with a name that has no
	// registered similarity function.
	ErrCodeUnknownMetric ErrorCode = "SIM_001"

	// ErrCodeDimensionMismatch marks fingerprints or matrices whose shapes
	// are incompatible. Always a programming error, never user input.
	ErrCodeDimensionMismatch ErrorCode = "SIM_002"

	// ErrCodeEmptyFingerprint marks a Tversky reference fingerprint with
	// zero set bits, which would divide by zero.
	ErrCodeEmptyFingerprint ErrorCode = "SIM_003"

	// ErrCodeSelfComparisonTooSmall marks a self-comparison reduction over
	// fewer than two molecules.
	ErrCodeSelfComparisonTooSmall ErrorCode = "SIM_004"
)

// Dataset error codes
const (
	// ErrCodeColumnNotFound marks a missing column in a loaded CSV table.
	ErrCodeColumnNotFound ErrorCode = "DATA_001"

	// ErrCodeShapeMismatch marks an internal-consistency failure between a
	// similarity matrix and the dataset it annotates.
	ErrCodeShapeMismatch ErrorCode = "DATA_002"

	// ErrCodeDatasetIO marks a failure reading or writing a CSV file.
	ErrCodeDatasetIO ErrorCode = "DATA_003"
)

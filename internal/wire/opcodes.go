// Package wire implements the xrootd binary framing: request/response
// headers, opcode and status constants, and path normalization. It has no
// knowledge of file handles or handler dispatch — see internal/xrootd for
// that layer.
package wire

// RequestCode identifies an xrootd client request. Values follow the
// kXR_* numbering used by the reference xrootd protocol.
type RequestCode uint16

const (
	ReqAuth     RequestCode = 3000
	ReqQuery    RequestCode = 3001
	ReqChmod    RequestCode = 3002
	ReqClose    RequestCode = 3003
	ReqDirList  RequestCode = 3004
	ReqGPFile   RequestCode = 3005
	ReqProtocol RequestCode = 3006
	ReqLogin    RequestCode = 3007
	ReqMkdir    RequestCode = 3008
	ReqMv       RequestCode = 3009
	ReqOpen     RequestCode = 3010
	ReqPing     RequestCode = 3011
	ReqPrepare  RequestCode = 3021
	ReqRead     RequestCode = 3013
	ReqRm       RequestCode = 3014
	ReqRmdir    RequestCode = 3015
	ReqSync     RequestCode = 3016
	ReqStat     RequestCode = 3017
	ReqSet      RequestCode = 3018
	ReqWrite    RequestCode = 3019
	ReqFattr    RequestCode = 3020
	ReqStatx    RequestCode = 3022
	ReqEndsess  RequestCode = 3023
	ReqBind     RequestCode = 3024
	ReqReadV    RequestCode = 3025
	ReqVerifyW  RequestCode = 3026
	ReqLocate   RequestCode = 3027
	ReqTruncate RequestCode = 3028
	ReqSigver   RequestCode = 3029
)

// ResponseStatus is the status field of a response frame header.
type ResponseStatus uint16

const (
	StOk        ResponseStatus = 0
	StAttn      ResponseStatus = 1
	StAuthMore  ResponseStatus = 2
	StError     ResponseStatus = 3
	StRedirect  ResponseStatus = 4
	StWait      ResponseStatus = 5
	StWaitResp  ResponseStatus = 6
	StOkSoFar   ResponseStatus = 7
)

// ErrorCode is the wire-visible error code carried in an error response
// body. These map 1:1 to the error kinds enumerated in the specification.
type ErrorCode uint32

const (
	ErrArgInvalid    ErrorCode = 3000
	ErrArgMissing    ErrorCode = 3001
	ErrArgTooLong    ErrorCode = 3002
	ErrFileLocked    ErrorCode = 3003
	ErrFileNotOpen   ErrorCode = 3004
	ErrFSError       ErrorCode = 3005
	ErrInvalidReq    ErrorCode = 3006
	ErrIOError       ErrorCode = 3007
	ErrNoMemory      ErrorCode = 3008
	ErrNoSpace       ErrorCode = 3009
	ErrNotAuthorized ErrorCode = 3010
	ErrNotFound      ErrorCode = 3011
	ErrServerError   ErrorCode = 3012
	ErrUnsupported   ErrorCode = 3013
	ErrNotFile       ErrorCode = 3015
	ErrIsDirectory   ErrorCode = 3016
)

// ServerKind is the value returned in a Protocol response identifying this
// server's role. Data servers answer kXR_DataServer.
type ServerKind uint32

const DataServer ServerKind = 1

// StatFlag is a bit in FileStatus.Flags.
type StatFlag uint32

const (
	StatIsDir    StatFlag = 1 << 0
	StatOther    StatFlag = 1 << 1
	StatXSet     StatFlag = 1 << 2
	StatReadable StatFlag = 1 << 3
	StatWritable StatFlag = 1 << 4
)

// OpenFlag is a bit in an Open request's options field.
type OpenFlag uint16

const (
	OpenReadWrite OpenFlag = 1 << 0
	OpenNew       OpenFlag = 1 << 1
	OpenDelete    OpenFlag = 1 << 2
	OpenMkPath    OpenFlag = 1 << 3
	OpenRetStat   OpenFlag = 1 << 4
)

func (f OpenFlag) Has(bit OpenFlag) bool { return f&bit != 0 }

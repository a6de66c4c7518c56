package p115

import "encoding/json"

// 115 各代接口的应答外壳字段名并不统一（errno / errNo），
// 在客户端边界统一解成一个 envelope，解析器内部不再关心差异。
type envelope struct {
	State   bool            `json:"state"`
	Errno   int             `json:"errno"`
	ErrnoV2 int             `json:"errNo"`
	Count   int             `json:"count"`
	Data    json.RawMessage `json:"data"`

	raw []byte
}

func decodeEnvelope(body []byte) (*envelope, error) {
	env := &envelope{}
	if err := json.Unmarshal(body, env); err != nil {
		return nil, err
	}
	env.raw = body
	return env, nil
}

// errCode 返回归一化后的上游错误码
func (e *envelope) errCode() int {
	if e.Errno != 0 {
		return e.Errno
	}
	return e.ErrnoV2
}

// fileRecord 文件查询接口返回的单条记录，覆盖新旧两代字段名
type fileRecord struct {
	Name     string `json:"n"`
	FileName string `json:"file_name"`
	Pickcode string `json:"pc"`
	PickCode string `json:"pick_code"`
	FileID   string `json:"fid"`
}

func (r *fileRecord) name() string {
	if r.Name != "" {
		return r.Name
	}
	return r.FileName
}

func (r *fileRecord) pickcode() string {
	if r.Pickcode != "" {
		return r.Pickcode
	}
	return r.PickCode
}

// shareSearchData share/search 把计数和列表嵌在 data 里
type shareSearchData struct {
	Count int          `json:"count"`
	List  []fileRecord `json:"list"`
}

// shareInfoData share/shareinfo 的载荷
type shareInfoData struct {
	ReceiveCode string `json:"receive_code"`
}

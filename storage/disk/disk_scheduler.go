package disk

// DiskScheduler funnels all page reads and writes through a single
// worker goroutine. Callers block on the request's response channel, so
// I/O is serialized without the rest of the system knowing.
func NewScheduler() *DiskScheduler {
	ds := &DiskScheduler{
		reqCh: make(chan DiskReq, 100),
		done:  make(chan struct{}),
	}

	go ds.handleDiskReq()
	return ds
}

func NewRequest(file *PageFile, pageNo PageID, data []byte, isWrite bool) DiskReq {
	return DiskReq{
		File:   file,
		PageNo: pageNo,
		Data:   data,
		Write:  isWrite,
		RespCh: make(chan DiskResp, 1),
	}
}

func (ds *DiskScheduler) Schedule(req DiskReq) <-chan DiskResp {
	ds.reqCh <- req
	return req.RespCh
}

func (ds *DiskScheduler) handleDiskReq() {
	defer close(ds.done)

	for req := range ds.reqCh {
		if req.Write {
			err := req.File.WritePage(req.PageNo, req.Data)
			req.RespCh <- DiskResp{Err: err}
		} else {
			buf := make([]byte, PAGE_SIZE)
			err := req.File.ReadPage(req.PageNo, buf)
			req.RespCh <- DiskResp{Data: buf, Err: err}
		}
	}
}

// Close stops the worker after it drains queued requests.
func (ds *DiskScheduler) Close() {
	close(ds.reqCh)
	<-ds.done
}

type DiskScheduler struct {
	reqCh chan DiskReq
	done  chan struct{}
}

type DiskReq struct {
	File   *PageFile
	PageNo PageID
	Data   []byte
	Write  bool
	RespCh chan DiskResp
}

type DiskResp struct {
	Data []byte
	Err  error
}

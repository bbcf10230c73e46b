package config

// Type is the closed set of backend kinds a remote definition can name.
// The kind is resolved once, at construction time, into a concrete backend.
type Type string

const (
	TypeLocal Type = "local"
	TypeFTP   Type = "ftp"
	TypeSFTP  Type = "sftp"
	TypeS3    Type = "s3"
	TypeAzure Type = "azure"
)

// Remote is one named remote definition from the configuration file.
type Remote interface {
	RemoteName() string
	RemoteType() Type
	Validate() error
}

// LocalRemote browses the local filesystem.
type LocalRemote struct {
	Name string `toml:"-"`
}

func (r *LocalRemote) RemoteName() string { return r.Name }
func (r *LocalRemote) RemoteType() Type   { return TypeLocal }
func (r *LocalRemote) Validate() error    { return nil }

// FTPRemote connects to an FTP or FTPS server.
type FTPRemote struct {
	Name     string `toml:"-"`
	URL      string `toml:"url"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	TLS      bool   `toml:"tls"`
}

func (r *FTPRemote) RemoteName() string { return r.Name }
func (r *FTPRemote) RemoteType() Type   { return TypeFTP }

func (r *FTPRemote) Validate() error {
	if r.URL == "" {
		return &ValidationError{Remote: r.Name, Reason: "FTP configuration requires 'url'"}
	}
	if r.Port < 0 || r.Port > 65535 {
		return &ValidationError{Remote: r.Name, Reason: "FTP port out of range"}
	}
	return nil
}

// Addr returns host:port with the FTP default applied.
func (r *FTPRemote) Addr() string {
	port := r.Port
	if port == 0 {
		port = 21
	}
	return joinHostPort(r.URL, port)
}

// User returns the username, defaulting to anonymous.
func (r *FTPRemote) User() string {
	if r.Username == "" {
		return "anonymous"
	}
	return r.Username
}

// Pass returns the password, defaulting to the anonymous convention.
func (r *FTPRemote) Pass() string {
	if r.Password == "" {
		return "anonymous@"
	}
	return r.Password
}

// SFTPRemote connects to an SSH file transfer server.
type SFTPRemote struct {
	Name     string `toml:"-"`
	URL      string `toml:"url"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	KeyFile  string `toml:"key_filename"`
}

func (r *SFTPRemote) RemoteName() string { return r.Name }
func (r *SFTPRemote) RemoteType() Type   { return TypeSFTP }

func (r *SFTPRemote) Validate() error {
	if r.URL == "" {
		return &ValidationError{Remote: r.Name, Reason: "SFTP configuration requires 'url'"}
	}
	if r.Port < 0 || r.Port > 65535 {
		return &ValidationError{Remote: r.Name, Reason: "SFTP port out of range"}
	}
	if r.Password == "" && r.KeyFile == "" {
		return &ValidationError{
			Remote: r.Name,
			Reason: "SFTP configuration requires either 'password' or 'key_filename'",
		}
	}
	return nil
}

// Addr returns host:port with the SSH default applied.
func (r *SFTPRemote) Addr() string {
	port := r.Port
	if port == 0 {
		port = 22
	}
	return joinHostPort(r.URL, port)
}

// S3Remote connects to an S3-compatible object store.
type S3Remote struct {
	Name            string `toml:"-"`
	Bucket          string `toml:"bucket_name"`
	URL             string `toml:"url"`
	Region          string `toml:"region_name"`
	EndpointURL     string `toml:"endpoint_url"`
	AccessKeyID     string `toml:"aws_access_key_id"`
	SecretAccessKey string `toml:"aws_secret_access_key"`
}

func (r *S3Remote) RemoteName() string { return r.Name }
func (r *S3Remote) RemoteType() Type   { return TypeS3 }

func (r *S3Remote) Validate() error {
	if r.Bucket == "" && r.URL == "" {
		return &ValidationError{
			Remote: r.Name,
			Reason: "S3 configuration requires either 'url' or 'bucket_name'",
		}
	}
	return nil
}

// BucketName resolves the bucket from either the explicit field or an
// s3://bucket URL.
func (r *S3Remote) BucketName() string {
	if r.Bucket != "" {
		return r.Bucket
	}
	const prefix = "s3://"
	if len(r.URL) > len(prefix) && r.URL[:len(prefix)] == prefix {
		return r.URL[len(prefix):]
	}
	return ""
}

// AzureRemote connects to an Azure Blob Storage container.
type AzureRemote struct {
	Name             string `toml:"-"`
	URL              string `toml:"url"`
	Container        string `toml:"container"`
	ConnectionString string `toml:"connection_string"`
	AccountKey       string `toml:"account_key"`
}

func (r *AzureRemote) RemoteName() string { return r.Name }
func (r *AzureRemote) RemoteType() Type   { return TypeAzure }

func (r *AzureRemote) Validate() error {
	if r.URL == "" {
		return &ValidationError{Remote: r.Name, Reason: "Azure configuration requires 'url'"}
	}
	if r.Container == "" {
		return &ValidationError{Remote: r.Name, Reason: "Azure configuration requires 'container'"}
	}
	return nil
}

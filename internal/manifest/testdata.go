package manifest

// Inline manifests shared by the package tests.

const masterPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-STREAM-INF:BANDWIDTH=800000,RESOLUTION=640x360,CODECS="avc1.4d401e,mp4a.40.2"
low/playlist.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=2800000,RESOLUTION=1280x720,FRAME-RATE=29.970,CODECS="avc1.4d401f,mp4a.40.2"
mid/playlist.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=5000000,RESOLUTION=1920x1080,FRAME-RATE=60,CODECS="avc1.640028,mp4a.40.2"
high/playlist.m3u8
`

const mediaPlaylist = `#EXTM3U
#EXT-X-VERSION:3
#EXT-X-TARGETDURATION:6
#EXT-X-MEDIA-SEQUENCE:1042
#EXTINF:6.006,
segment_1042.ts
#EXTINF:6.006,
segment_1043.ts
#EXTINF:4.171,
segment_1044.ts
#EXT-X-ENDLIST
`

const mpdManifest = `<?xml version="1.0" encoding="UTF-8"?>
<MPD xmlns="urn:mpeg:dash:schema:mpd:2011" type="static">
  <Period>
    <AdaptationSet mimeType="video/mp4">
      <SegmentTemplate media="chunk_$RepresentationID$_$Number$.m4s" initialization="init_$RepresentationID$.m4s"/>
      <Representation id="video-480" bandwidth="1000000" width="854" height="480" frameRate="30" codecs="avc1.4d401f"/>
      <Representation id="video-1080" bandwidth="3000000" width="1920" height="1080" frameRate="30000/1001" codecs="avc1.640028"/>
    </AdaptationSet>
  </Period>
</MPD>
`

const mpdNoRepresentations = `<?xml version="1.0" encoding="UTF-8"?>
<MPD xmlns="urn:mpeg:dash:schema:mpd:2011" type="static">
  <Period/>
</MPD>
`
